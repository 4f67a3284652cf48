package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNewBookFromRequest(t *testing.T) {
	b := NewBookFromRequest(CreateBookRequest{
		BookName: "Dune",
		Price:    9.99,
		ISBN:     "9780441013593",
		Quantity: 5,
		Author:   &Author{AuthorName: "Frank Herbert"},
	})

	assert.Empty(t, b.ID)
	assert.Equal(t, 0.0, b.Rating)
	assert.Equal(t, 5, b.Quantity)
	assert.Equal(t, "Frank Herbert", b.Author.AuthorName)
}

func TestNormalizeISBN(t *testing.T) {
	tests := map[string]string{
		"9780441013593":     "9780441013593",
		"978-0-441-01359-3": "9780441013593",
		" 978 0441 013593 ": "9780441013593",
		"978-0441013593\t":  "9780441013593",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeISBN(in), "input %q", in)
	}

	b := NewBookFromRequest(CreateBookRequest{ISBN: "978-0-441-01359-3"})
	assert.Equal(t, "9780441013593", b.ISBN)
}

func TestApplyFieldUpdate_LeavesCountersAlone(t *testing.T) {
	b := &Book{ID: "1", BookName: "Old", Price: 1, ISBN: "9780441013593", Rating: 3, Quantity: 7}
	b.ApplyFieldUpdate("New", 2.5, Author{AuthorName: "Someone", Country: "NL"})

	assert.Equal(t, Book{
		ID: "1", BookName: "New", Price: 2.5, ISBN: "9780441013593", Rating: 3, Quantity: 7,
		Author: Author{AuthorName: "Someone", Country: "NL"},
	}, *b)
}

func TestApplyRating_IsRunningAverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		old := rapid.Float64Range(0, 10).Draw(t, "old")
		in := rapid.Float64Range(0.01, 10).Draw(t, "rating")

		b := &Book{Rating: old}
		b.ApplyRating(in)

		if b.Rating != (old+in)/2 {
			t.Fatalf("rating %v, want %v", b.Rating, (old+in)/2)
		}
		lo, hi := old, in
		if lo > hi {
			lo, hi = hi, lo
		}
		if b.Rating < lo || b.Rating > hi {
			t.Fatalf("rating %v outside [%v, %v]", b.Rating, lo, hi)
		}
	})
}

func TestApplyQuantityDelta_IsAdditive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.IntRange(0, 1_000_000).Draw(t, "start")
		deltas := rapid.SliceOf(rapid.IntRange(-1000, 1000)).Draw(t, "deltas")

		b := &Book{Quantity: start}
		want := start
		for _, d := range deltas {
			b.ApplyQuantityDelta(d)
			want += d
		}
		if b.Quantity != want {
			t.Fatalf("quantity %d, want %d", b.Quantity, want)
		}
	})
}

func TestToResponseList_NeverNil(t *testing.T) {
	assert.NotNil(t, ToResponseList(nil))
	assert.Len(t, ToResponseList([]Book{{ISBN: "a"}, {ISBN: "b"}}), 2)
}

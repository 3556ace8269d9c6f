package models

import "testing"

func TestQuery_Validate(t *testing.T) {
	q := &Query{Question: "What is the vacation policy?"}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.TopK != DefaultTopK {
		t.Errorf("TopK=%d, want default %d", q.TopK, DefaultTopK)
	}
}

func TestQuery_ValidateEmpty(t *testing.T) {
	q := &Query{Question: "   "}
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty question")
	}
}

func TestQuery_ValidateCategory(t *testing.T) {
	q := &Query{Question: "password reset?", Category: " HR "}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Category != "hr" {
		t.Errorf("Category=%q, want hr", q.Category)
	}

	q = &Query{Question: "anything", Category: "finance"}
	if err := q.Validate(); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestQuery_ValidateClampsTopK(t *testing.T) {
	q := &Query{Question: "q", TopK: 1000}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.TopK != MaxTopK {
		t.Errorf("TopK=%d, want %d", q.TopK, MaxTopK)
	}
}

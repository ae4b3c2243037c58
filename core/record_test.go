package core

import (
	"testing"
	"time"
)

func TestFillWhitelist(t *testing.T) {
	r := MustNewResource(&BlogPost{})
	post := &BlogPost{}

	err := r.Fill(post, map[string]any{
		"title":      "Hello",
		"slug":       "hello",
		"id":         99,          // primary key, must be skipped
		"created_at": "2024-01-01", // read-only, must be skipped
		"unknown":    "ignored",
	})
	if err != nil {
		t.Fatalf("Fill() error: %v", err)
	}

	if post.Title != "Hello" || post.Slug != "hello" {
		t.Errorf("fillable fields not set: %+v", post)
	}
	if post.ID != 0 {
		t.Error("primary key must never be mass-assigned")
	}
	if !post.CreatedAt.IsZero() {
		t.Error("read-only fields must never be mass-assigned")
	}
}

func TestFillJSONNumbers(t *testing.T) {
	type Counter struct {
		ID    uint `json:"id" db:"id"`
		Count int  `json:"count" db:"count"`
	}
	r := MustNewResource(&Counter{})
	c := &Counter{}

	// JSON decoding produces float64 for all numbers
	if err := r.Fill(c, map[string]any{"count": float64(7)}); err != nil {
		t.Fatalf("Fill() error: %v", err)
	}
	if c.Count != 7 {
		t.Errorf("Count = %d", c.Count)
	}

	// Fractional values must not be silently truncated
	if err := r.Fill(c, map[string]any{"count": 7.5}); err == nil {
		t.Error("expected error assigning 7.5 to an integer field")
	}
}

func TestFillTimeLayouts(t *testing.T) {
	r := MustNewResource(&BlogPost{})

	for _, value := range []string{
		"2024-03-09T14:30:00Z",
		"2024-03-09 14:30:00",
		"2024-03-09",
	} {
		post := &BlogPost{}
		if err := r.Fill(post, map[string]any{"published_at": value}); err != nil {
			t.Errorf("Fill(published_at=%q) error: %v", value, err)
			continue
		}
		if post.PublishedAt == nil || post.PublishedAt.IsZero() {
			t.Errorf("published_at not parsed from %q", value)
		}
	}

	post := &BlogPost{}
	if err := r.Fill(post, map[string]any{"published_at": "not a date"}); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestFillNilClearsPointerField(t *testing.T) {
	r := MustNewResource(&BlogPost{})
	now := time.Now()
	post := &BlogPost{PublishedAt: &now}

	if err := r.Fill(post, map[string]any{"published_at": nil}); err != nil {
		t.Fatalf("Fill() error: %v", err)
	}
	if post.PublishedAt != nil {
		t.Error("nil should clear pointer fields")
	}
}

func TestFillRejectsNonPointerModel(t *testing.T) {
	r := MustNewResource(&BlogPost{})
	if err := r.Fill(BlogPost{}, map[string]any{"title": "x"}); err == nil {
		t.Error("expected error for non-pointer model")
	}
}

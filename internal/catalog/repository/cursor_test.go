package repository

import (
	"errors"
	"testing"
	"time"

	"product-catalog/internal/catalog"
)

func TestCursorRoundTrip(t *testing.T) {
	pos := cursorPos{
		CreatedAt: time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC),
		ID:        "c1a76f41-25c8-4e27-a0b5-6a9d4f2f3b1e",
	}

	decoded, err := decodeCursor(encodeCursor(pos))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.CreatedAt.Equal(pos.CreatedAt) || decoded.ID != pos.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, pos)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"!!not-base64!!", "bm90IGpzb24"} {
		_, err := decodeCursor(raw)
		if err == nil {
			t.Fatalf("decodeCursor(%q): want error, got nil", raw)
		}
		if !errors.Is(err, catalog.ErrBadCursor) {
			t.Fatalf("decodeCursor(%q): want ErrBadCursor, got %v", raw, err)
		}
	}
}

package repository

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"product-catalog/internal/catalog"
)

// cursorPos pins the position of the last returned row. The encoded form
// is opaque to clients; the (created_at, id) pair matches the listing
// sort key so pages never skip or repeat rows.
type cursorPos struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"i"`
}

func encodeCursor(pos cursorPos) string {
	raw, _ := json.Marshal(pos)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeCursor rejects anything that did not come from encodeCursor with
// catalog.ErrBadCursor so handlers can blame the caller.
func decodeCursor(cursor string) (cursorPos, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return cursorPos{}, fmt.Errorf("%w: %v", catalog.ErrBadCursor, err)
	}

	var pos cursorPos
	if err := json.Unmarshal(raw, &pos); err != nil {
		return cursorPos{}, fmt.Errorf("%w: %v", catalog.ErrBadCursor, err)
	}
	return pos, nil
}

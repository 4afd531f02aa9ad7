package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Cursor decode failures. Callers distinguish them from storage errors and
// treat either as "restart from the first page" rather than a hard failure.
var (
	// ErrCursorMalformed marks tokens that are not valid cursors at all.
	ErrCursorMalformed = errors.New("malformed cursor")

	// ErrCursorMismatch marks well-formed cursors minted for a different
	// (filter, sort) combination. Applying them would corrupt pagination,
	// so they are rejected instead of being seeked on.
	ErrCursorMismatch = errors.New("cursor does not match filter set")
)

// cursorToken is the serialized cursor payload. Mode and filter fingerprint
// bind the token to one specific result set; Key is the seek position.
type cursorToken struct {
	Mode   SortMode `json:"m"`
	Filter string   `json:"f"`
	Key    RankKey  `json:"k"`
}

// EncodeCursor serializes the rank key of the last row of a page into an
// opaque continuation token. Encoding is deterministic: the same key under
// the same params always yields the same string.
func EncodeCursor(p SearchParams, key RankKey) (string, error) {
	if key.ID == "" {
		return "", fmt.Errorf("encoding cursor: key has no id")
	}

	b, err := json.Marshal(cursorToken{
		Mode:   p.Sort,
		Filter: p.Fingerprint(),
		Key:    key,
	})
	if err != nil {
		return "", fmt.Errorf("encoding cursor: %w", err)
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses an opaque cursor back into a seek key, verifying it
// belongs to the given (filter, sort) combination. An empty cursor decodes
// to nil (first page). Never panics on hostile input.
func DecodeCursor(p SearchParams, raw string) (*RankKey, error) {
	if raw == "" {
		return nil, nil
	}

	b, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursorMalformed, err)
	}

	var tok cursorToken
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursorMalformed, err)
	}

	if tok.Key.ID == "" {
		return nil, fmt.Errorf("%w: missing seek id", ErrCursorMalformed)
	}
	if tok.Mode != p.Sort || tok.Filter != p.Fingerprint() {
		return nil, ErrCursorMismatch
	}

	return &tok.Key, nil
}

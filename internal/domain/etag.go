package domain

import (
	"fmt"
	"strings"
)

const maxETagLength = 1024

// ETag is the content fingerprint the store issues for a committed object or
// part. Stores quote the header value; the quotes are not part of the tag and
// are stripped on construction.
type ETag struct {
	value string
}

// NewETag validates raw (quoted or unquoted) and returns the unquoted tag.
func NewETag(raw string) (ETag, error) {
	v := raw
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	if v == "" {
		return ETag{}, fmt.Errorf("%w: empty", ErrInvalidETag)
	}
	if len(v) > maxETagLength {
		return ETag{}, fmt.Errorf("%w: exceeds %d chars", ErrInvalidETag, maxETagLength)
	}
	for _, r := range v {
		if !isETagRune(r) {
			return ETag{}, fmt.Errorf("%w: unexpected character %q", ErrInvalidETag, r)
		}
	}
	return ETag{value: v}, nil
}

// Multipart etags carry a "-<parts>" suffix on top of the hex digest.
func isETagRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		return true
	case r == '-':
		return true
	}
	return false
}

// String returns the unquoted tag.
func (e ETag) String() string { return e.value }

// IsZero reports whether the tag is the zero value.
func (e ETag) IsZero() bool { return e.value == "" }

// Quoted returns the tag in the wire form used by completion calls.
func (e ETag) Quoted() string { return `"` + e.value + `"` }

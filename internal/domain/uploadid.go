package domain

import "fmt"

const maxUploadIDLength = 1024

// UploadID is the opaque token the store issues for one multipart session.
type UploadID struct {
	value string
}

// NewUploadID validates raw as visible ASCII without whitespace.
func NewUploadID(raw string) (UploadID, error) {
	if raw == "" {
		return UploadID{}, fmt.Errorf("%w: empty", ErrInvalidUploadID)
	}
	if len(raw) > maxUploadIDLength {
		return UploadID{}, fmt.Errorf("%w: exceeds %d chars", ErrInvalidUploadID, maxUploadIDLength)
	}
	for _, r := range raw {
		if r <= 0x20 || r >= 0x7f {
			return UploadID{}, fmt.Errorf("%w: non-printable or whitespace character", ErrInvalidUploadID)
		}
	}
	return UploadID{value: raw}, nil
}

// String returns the raw token.
func (u UploadID) String() string { return u.value }

// IsZero reports whether the id is the zero value.
func (u UploadID) IsZero() bool { return u.value == "" }

// Truncated returns a log-safe prefix of the token.
func (u UploadID) Truncated() string {
	if len(u.value) <= 12 {
		return u.value
	}
	return u.value[:12] + "..."
}

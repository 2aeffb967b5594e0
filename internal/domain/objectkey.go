package domain

import (
	"fmt"
	"strings"
)

// MaxObjectKeyBytes is the store-imposed ceiling on key length.
const MaxObjectKeyBytes = 1024

// ObjectKey is the physical key of an object inside a bucket: a
// slash-separated path with no empty, relative or traversal segments.
// The zero value is invalid; construct via NewObjectKey or JoinObjectKey.
type ObjectKey struct {
	value string
}

// NewObjectKey validates raw and wraps it as an ObjectKey.
func NewObjectKey(raw string) (ObjectKey, error) {
	if err := validateKey(raw); err != nil {
		return ObjectKey{}, err
	}
	return ObjectKey{value: raw}, nil
}

// JoinObjectKey builds a key from a path prefix and a filename.
// The filename is validated on its own before the combined key is validated
// again: the prefix is server-controlled while the filename crosses a trust
// boundary from the client.
func JoinObjectKey(path, filename string) (ObjectKey, error) {
	if err := validateFilename(filename); err != nil {
		return ObjectKey{}, err
	}
	if path == "" {
		return NewObjectKey(filename)
	}
	return NewObjectKey(path + "/" + filename)
}

// String returns the raw key.
func (k ObjectKey) String() string { return k.value }

// IsZero reports whether the key is the (invalid) zero value.
func (k ObjectKey) IsZero() bool { return k.value == "" }

// Path returns everything before the last slash, or "" for a bare filename.
func (k ObjectKey) Path() string {
	if i := strings.LastIndex(k.value, "/"); i >= 0 {
		return k.value[:i]
	}
	return ""
}

// Filename returns the segment after the last slash.
func (k ObjectKey) Filename() string {
	if i := strings.LastIndex(k.value, "/"); i >= 0 {
		return k.value[i+1:]
	}
	return k.value
}

// WithFilename returns a key with the same path and a new filename.
func (k ObjectKey) WithFilename(filename string) (ObjectKey, error) {
	return JoinObjectKey(k.Path(), filename)
}

// WithPath returns a key with a new path and the same filename.
func (k ObjectKey) WithPath(path string) (ObjectKey, error) {
	return JoinObjectKey(path, k.Filename())
}

func validateKey(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty", ErrInvalidObjectKey)
	}
	if len(raw) > MaxObjectKeyBytes {
		return fmt.Errorf("%w: exceeds %d bytes", ErrInvalidObjectKey, MaxObjectKeyBytes)
	}
	if strings.HasPrefix(raw, "/") || strings.HasSuffix(raw, "/") {
		return fmt.Errorf("%w: leading or trailing slash", ErrInvalidObjectKey)
	}
	if strings.Contains(raw, "//") {
		return fmt.Errorf("%w: double slash", ErrInvalidObjectKey)
	}
	for _, r := range raw {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: control character", ErrInvalidObjectKey)
		}
	}
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: path traversal segment", ErrInvalidObjectKey)
		}
	}
	return nil
}

func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	}
	if strings.Contains(filename, "/") {
		return fmt.Errorf("%w: contains slash", ErrInvalidFilename)
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: relative segment", ErrInvalidFilename)
	}
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: control character", ErrInvalidFilename)
		}
	}
	return nil
}

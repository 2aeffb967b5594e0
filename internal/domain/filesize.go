package domain

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FileSize is a non-negative byte count used for quota bookkeeping.
type FileSize struct {
	bytes int64
}

// NewFileSize validates n as a non-negative byte count.
func NewFileSize(n int64) (FileSize, error) {
	if n < 0 {
		return FileSize{}, fmt.Errorf("%w: negative byte count %d", ErrInvalidFileSize, n)
	}
	return FileSize{bytes: n}, nil
}

// FileSizeFromKiB builds a FileSize from binary kilobytes.
func FileSizeFromKiB(n int64) (FileSize, error) { return NewFileSize(n * 1024) }

// FileSizeFromMiB builds a FileSize from binary megabytes.
func FileSizeFromMiB(n int64) (FileSize, error) { return NewFileSize(n * 1024 * 1024) }

// FileSizeFromGiB builds a FileSize from binary gigabytes.
func FileSizeFromGiB(n int64) (FileSize, error) { return NewFileSize(n * 1024 * 1024 * 1024) }

// Bytes returns the raw byte count.
func (s FileSize) Bytes() int64 { return s.bytes }

// Add returns the sum of two sizes.
func (s FileSize) Add(other FileSize) FileSize {
	return FileSize{bytes: s.bytes + other.bytes}
}

// Subtract returns the difference, floored at zero.
func (s FileSize) Subtract(other FileSize) FileSize {
	if other.bytes >= s.bytes {
		return FileSize{}
	}
	return FileSize{bytes: s.bytes - other.bytes}
}

// GreaterThan reports s > other.
func (s FileSize) GreaterThan(other FileSize) bool { return s.bytes > other.bytes }

// LessThan reports s < other.
func (s FileSize) LessThan(other FileSize) bool { return s.bytes < other.bytes }

// IsZero reports whether the size is zero bytes.
func (s FileSize) IsZero() bool { return s.bytes == 0 }

// String formats the size for humans, e.g. "10 MiB".
func (s FileSize) String() string {
	return humanize.IBytes(uint64(s.bytes))
}

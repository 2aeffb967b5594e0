package storage

import (
	"fmt"
	"strings"
)

// ValidateBucketName enforces S3 bucket naming: 3-63 chars, lowercase
// alphanumerics, dots and hyphens, starting and ending alphanumeric, no
// consecutive dots.
func ValidateBucketName(bucket string) error {
	if len(bucket) < 3 || len(bucket) > 63 {
		return &ValidationError{Field: "bucket", Reason: "length must be 3-63 characters"}
	}
	if strings.Contains(bucket, "..") {
		return &ValidationError{Field: "bucket", Reason: "consecutive dots not allowed"}
	}
	for i, r := range bucket {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '.' || r == '-':
			if i == 0 || i == len(bucket)-1 {
				return &ValidationError{Field: "bucket", Reason: "must start and end with a letter or digit"}
			}
		default:
			return &ValidationError{Field: "bucket", Reason: fmt.Sprintf("character %q not allowed", r)}
		}
	}
	return nil
}

// ValidateObjectKey enforces store key limits: non-empty, at most 1024
// bytes, no traversal segments, no NUL bytes.
func ValidateObjectKey(key string) error {
	if key == "" {
		return &ValidationError{Field: "object key", Reason: "must not be empty"}
	}
	if len(key) > 1024 {
		return &ValidationError{Field: "object key", Reason: "exceeds 1024 bytes"}
	}
	if strings.ContainsRune(key, 0) {
		return &ValidationError{Field: "object key", Reason: "contains NUL byte"}
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return &ValidationError{Field: "object key", Reason: "path traversal segment not allowed"}
		}
	}
	return nil
}

// ValidatePartNumber enforces the store's part number range.
func ValidatePartNumber(n int) error {
	if n < 1 || n > MaxPartNumber {
		return &ValidationError{
			Field:  "part number",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", MaxPartNumber, n),
		}
	}
	return nil
}

// ValidateExpiry enforces the presigned-URL lifetime range.
func ValidateExpiry(seconds int) error {
	if seconds < 1 || seconds > MaxPresignExpirySeconds {
		return &ValidationError{
			Field:  "expiration",
			Reason: fmt.Sprintf("must be between 1 and %d seconds, got %d", MaxPresignExpirySeconds, seconds),
		}
	}
	return nil
}

// ValidateCompletedParts checks a completion part list: non-empty, unique
// valid part numbers, well-formed etags.
func ValidateCompletedParts(parts []CompletedPart) error {
	if len(parts) == 0 {
		return &ValidationError{Field: "parts", Reason: "must not be empty"}
	}
	seen := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		if err := ValidatePartNumber(p.PartNumber); err != nil {
			return err
		}
		if _, dup := seen[p.PartNumber]; dup {
			return &ValidationError{
				Field:  "parts",
				Reason: fmt.Sprintf("duplicate part number %d", p.PartNumber),
			}
		}
		seen[p.PartNumber] = struct{}{}
		if strings.Trim(p.ETag, `"`) == "" {
			return &ValidationError{
				Field:  "parts",
				Reason: fmt.Sprintf("part %d has an empty etag", p.PartNumber),
			}
		}
	}
	return nil
}

func validateBucketAndKey(bucket, key string) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}
	return ValidateObjectKey(key)
}

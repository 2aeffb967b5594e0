package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "simple filename", raw: "report.pdf"},
		{name: "nested key", raw: "acme/users/42/docs/report.pdf"},
		{name: "empty", raw: "", wantErr: ErrInvalidObjectKey},
		{name: "leading slash", raw: "/a/b", wantErr: ErrInvalidObjectKey},
		{name: "trailing slash", raw: "a/b/", wantErr: ErrInvalidObjectKey},
		{name: "double slash", raw: "a//b", wantErr: ErrInvalidObjectKey},
		{name: "traversal segment", raw: "a/../b", wantErr: ErrInvalidObjectKey},
		{name: "control character", raw: "a/b\x00c", wantErr: ErrInvalidObjectKey},
		{name: "too long", raw: strings.Repeat("a", MaxObjectKeyBytes+1), wantErr: ErrInvalidObjectKey},
		{name: "max length ok", raw: strings.Repeat("a", MaxObjectKeyBytes)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewObjectKey(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, k.IsZero())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.raw, k.String())
			}
		})
	}
}

func TestJoinObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		filename string
		want     string
		wantErr  error
	}{
		{name: "path and filename", path: "acme/users/42", filename: "a.txt", want: "acme/users/42/a.txt"},
		{name: "empty path", path: "", filename: "a.txt", want: "a.txt"},
		{name: "filename with slash", path: "acme", filename: "x/y.txt", wantErr: ErrInvalidFilename},
		{name: "dot filename", path: "acme", filename: ".", wantErr: ErrInvalidFilename},
		{name: "dotdot filename", path: "a/b", filename: "..", wantErr: ErrInvalidFilename},
		{name: "empty filename", path: "acme", filename: "", wantErr: ErrInvalidFilename},
		{name: "bad path surfaces on combined key", path: "/abs", filename: "a.txt", wantErr: ErrInvalidObjectKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := JoinObjectKey(tt.path, tt.filename)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, k.String())
			}
		})
	}
}

// Decomposing a valid key and joining the pieces back must reproduce it.
func TestObjectKey_JoinDecomposeRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"a.txt",
		"acme/users/42/docs/report.pdf",
		"common/shared/readme",
	} {
		k, err := NewObjectKey(raw)
		require.NoError(t, err)

		rejoined, err := JoinObjectKey(k.Path(), k.Filename())
		require.NoError(t, err)
		assert.Equal(t, k.String(), rejoined.String())
	}
}

func TestObjectKey_WithFilenameAndPath(t *testing.T) {
	k, err := NewObjectKey("acme/users/42/a.txt")
	require.NoError(t, err)

	renamed, err := k.WithFilename("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "acme/users/42/b.txt", renamed.String())

	moved, err := k.WithPath("acme/common/shared")
	require.NoError(t, err)
	assert.Equal(t, "acme/common/shared/a.txt", moved.String())

	// the receiver is untouched
	assert.Equal(t, "acme/users/42/a.txt", k.String())

	_, err = k.WithFilename("..")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

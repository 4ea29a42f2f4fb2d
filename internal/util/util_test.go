package util

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapError("parse config", base)
	require.Error(t, wrapped)
	assert.Equal(t, "failed to parse config: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	assert.NoError(t, WrapError("anything", nil))
}

func TestExtractLastError(t *testing.T) {
	stderr := "line one\nline two\n\n  last meaningful line  \n\n"
	assert.Equal(t, "last meaningful line", ExtractLastError(stderr))

	assert.Empty(t, ExtractLastError(""))
	assert.Empty(t, ExtractLastError("\n\n  \n"))

	long := strings.Repeat("x", 300)
	got := ExtractLastError(long)
	assert.Len(t, got, maxErrorLineLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestBackoff(t *testing.T) {
	b := NewBackoff(time.Second, 5*time.Second)

	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Next())
	assert.Equal(t, 4*time.Second, b.Next())
	// Capped at the maximum.
	assert.Equal(t, 5*time.Second, b.Next())
	assert.Equal(t, 5*time.Second, b.Current())

	b.Reset()
	assert.Equal(t, time.Second, b.Current())
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, IsConfigured("a", "b"))
	assert.False(t, IsConfigured("a", ""))
	assert.True(t, IsConfigured())
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("field", "captures/meeting.wav"))
	assert.Error(t, ValidatePath("field", ""))
	assert.Error(t, ValidatePath("field", "../escape"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{45000, "45s"},
		{154000, "2m 34s"},
		{4980000, "1h 23m"},
		{0, "0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ms), "ms %d", tt.ms)
	}
}

func TestCaptureTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	assert.Equal(t, "2025-03-14_15-09-26", CaptureTimestamp(ts))
}

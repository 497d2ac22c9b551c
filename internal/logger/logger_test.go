package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "short", input: "hello", limit: 10, want: "hello"},
		{name: "trimmed before counting", input: "  hello  ", limit: 5, want: "hello"},
		{name: "cut", input: "hello world", limit: 5, want: "hello..."},
		{name: "multibyte", input: "héllo wörld", limit: 4, want: "héll..."},
		{name: "zero limit", input: "hello", limit: 0, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Truncate(tc.input, tc.limit))
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}

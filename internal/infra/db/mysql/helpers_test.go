package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFilesNeverNull(t *testing.T) {
	raw, err := encodeFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	raw, err = encodeFiles([]string{"a.csv", "b.png"})
	require.NoError(t, err)
	assert.Equal(t, `["a.csv","b.png"]`, raw)
}

func TestDecodeFiles(t *testing.T) {
	files, err := decodeFiles("  ")
	require.NoError(t, err)
	assert.Equal(t, []string{}, files)

	files, err = decodeFiles(`["a.csv"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, files)

	_, err = decodeFiles("{")
	assert.Error(t, err)
}

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", stringOrDash(" "))
	assert.Equal(t, "error", stringOrDash("error"))
}

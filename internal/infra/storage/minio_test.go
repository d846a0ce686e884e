package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/x-lua", contentType("/tmp/x/analysis.lua"))
	assert.Equal(t, "application/json", contentType("out.json"))
	assert.Equal(t, "image/svg+xml", contentType("fig.svg"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}

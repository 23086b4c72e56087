package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBanner(t *testing.T) {
	out := Banner("jbfc", "listening on :8080")
	assert.Contains(t, out, "jbfc")
	assert.Contains(t, out, "listening on :8080")
	assert.Contains(t, out, "╭")
}

func TestShowBannerWithoutTTY(t *testing.T) {
	originalHasTTY := HasTTY
	defer func() { HasTTY = originalHasTTY }()

	HasTTY = false
	var buf bytes.Buffer
	ShowBanner(&buf, "Test Title", "Test Body")
	assert.Empty(t, buf.String())
}

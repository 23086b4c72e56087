package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithKV(t *testing.T) {
	log := NewTestLogger()
	WithKV(log, "game_id", "123").Info("x")
	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "123", entries[0].Metadata["game_id"])
}

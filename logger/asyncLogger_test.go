package logger

import (
	"testing"

	"mm-shipping/types"

	"github.com/stretchr/testify/assert"
)

func TestLogDropsInsteadOfBlockingWhenBufferFull(t *testing.T) {
	// No ProcessLog goroutine is running, so the buffer only fills.
	asyncLogger := NewAsyncLogger(nil)

	for i := 0; i < 150; i++ {
		asyncLogger.Log(types.LogEntry{Method: "GET", URL: "/api/shipments/track/MMT1"})
	}

	// The call above returning at all proves Log no longer blocks; the
	// overflow beyond the buffer size is counted, not queued.
	assert.Len(t, asyncLogger.channel, 100)
	assert.Equal(t, int64(50), asyncLogger.Dropped())
}

func TestLogQueuesWhileBufferHasRoom(t *testing.T) {
	asyncLogger := NewAsyncLogger(nil)

	asyncLogger.Log(types.LogEntry{Method: "POST", URL: "/api/shipments"})

	assert.Len(t, asyncLogger.channel, 1)
	assert.Equal(t, int64(0), asyncLogger.Dropped())
}

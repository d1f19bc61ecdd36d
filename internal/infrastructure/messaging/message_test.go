package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessagePayloadRoundTrip(t *testing.T) {
	payload := ChapterGeneratedMessage{
		NovelID:        "n-1",
		UserID:         "u-1",
		ChapterNumber:  3,
		Title:          "第三章",
		WordCount:      2048,
		Mode:           "continuation",
		RewriteApplied: true,
	}

	msg, err := NewMessage("msg-1", TypeChapterGenerated, "n-1", "u-1", payload)
	require.NoError(t, err)
	assert.Equal(t, TypeChapterGenerated, msg.Type)
	assert.False(t, msg.CreatedAt.IsZero())

	var got ChapterGeneratedMessage
	require.NoError(t, msg.UnmarshalPayload(&got))
	assert.Equal(t, payload, got)
}

func TestMessageMetadata(t *testing.T) {
	msg := &Message{}
	assert.Empty(t, msg.GetMetadata("mode"))

	msg.SetMetadata("mode", "init")
	assert.Equal(t, "init", msg.GetMetadata("mode"))
}

func TestStreamDLQ(t *testing.T) {
	assert.Equal(t, "dlq:stream:novel:events", StreamNovelEvents.DLQStream())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := DefaultBackoffConfig()

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	// 超过上限后封顶
	assert.Equal(t, time.Minute, cfg.CalculateBackoff(10))
	assert.Equal(t, time.Minute, cfg.CalculateBackoff(100))
}

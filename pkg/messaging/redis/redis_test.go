package redis

import (
	"bytes"
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(buf *bytes.Buffer) *RedisBroker {
	return &RedisBroker{logger: zerolog.New(buf)}
}

func TestForward_DeliversUntilSourceCloses(t *testing.T) {
	b := newTestBroker(&bytes.Buffer{})

	src := make(chan *redis.Message, 2)
	src <- &redis.Message{Payload: "first"}
	src <- &redis.Message{Payload: "second"}
	close(src)

	dst := make(chan []byte, 2)
	b.forward(context.Background(), "events", src, dst)

	require.Equal(t, []byte("first"), <-dst)
	require.Equal(t, []byte("second"), <-dst)

	_, open := <-dst
	assert.False(t, open, "subscriber channel should close with the source")
}

func TestForward_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	var logBuf bytes.Buffer
	b := newTestBroker(&logBuf)

	src := make(chan *redis.Message, 2)
	src <- &redis.Message{Payload: "kept"}
	src <- &redis.Message{Payload: "dropped"}
	close(src)

	dst := make(chan []byte, 1)
	b.forward(context.Background(), "events", src, dst)

	require.Equal(t, []byte("kept"), <-dst)
	_, open := <-dst
	assert.False(t, open)
	assert.Contains(t, logBuf.String(), "subscriber buffer full, dropping message")
}

func TestForward_CancelClosesSubscriber(t *testing.T) {
	b := newTestBroker(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := make(chan *redis.Message)
	dst := make(chan []byte, 1)
	b.forward(ctx, "events", src, dst)

	_, open := <-dst
	assert.False(t, open, "subscriber channel should close on cancellation")
}

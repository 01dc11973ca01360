package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

func newTestPublisher(t *testing.T, maxLen int64) (*Publisher, *miniredis.Miniredis, *instrumentation.Metrics) {
	t.Helper()
	return newQueuedPublisher(t, maxLen, 0)
}

func newQueuedPublisher(t *testing.T, maxLen int64, queueSize int) (*Publisher, *miniredis.Miniredis, *instrumentation.Metrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	metrics := instrumentation.NewMetrics(prometheus.NewRegistry())

	p, err := NewPublisher(Options{
		RedisURL:  "redis://" + mr.Addr(),
		Stream:    "debank:tool_calls",
		MaxLen:    maxLen,
		QueueSize: queueSize,
		Metrics:   metrics,
	})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, mr, metrics
}

func readStream(t *testing.T, mr *miniredis.Miniredis) []redis.XMessage {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	msgs, err := client.XRange(context.Background(), "debank:tool_calls", "-", "+").Result()
	require.NoError(t, err)
	return msgs
}

func TestObserveToolCallWritesMetadata(t *testing.T) {
	p, mr, _ := newTestPublisher(t, 100)

	p.ObserveToolCall(context.Background(), mcp.ToolCall{
		Tool:          "get_token_info",
		Mode:          "history",
		Outcome:       mcp.OutcomeInvalidArgument,
		CorrelationID: "corr-1",
		Latency:       42 * time.Millisecond,
	})

	assert.Eventually(t, func() bool { return len(readStream(t, mr)) == 1 }, 2*time.Second, 10*time.Millisecond)
	msgs := readStream(t, mr)
	require.Len(t, msgs, 1)
	values := msgs[0].Values
	assert.Equal(t, "get_token_info", values["tool"])
	assert.Equal(t, "history", values["mode"])
	assert.Equal(t, "invalid_arguments", values["outcome"])
	assert.Equal(t, "0", values["error_code"])
	assert.Equal(t, "corr-1", values["correlation_id"])
	assert.Equal(t, "42", values["latency_ms"])
	assert.NotEmpty(t, values["ts"])
	assert.Len(t, values, 7)
}

func TestPublishTrimsStream(t *testing.T) {
	p, mr, _ := newTestPublisher(t, 3)

	for i := 0; i < 10; i++ {
		_, err := p.Publish(context.Background(), mcp.ToolCall{Tool: fmt.Sprintf("tool-%d", i), Outcome: mcp.OutcomeResult})
		require.NoError(t, err)
	}

	msgs := readStream(t, mr)
	require.Len(t, msgs, 3)
	assert.Equal(t, "tool-9", msgs[2].Values["tool"])
}

func TestObserveToolCallSurvivesCancelledContext(t *testing.T) {
	p, mr, _ := newTestPublisher(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.ObserveToolCall(ctx, mcp.ToolCall{Tool: "simulate_tx", Outcome: mcp.OutcomeTimeout, ErrorCode: mcp.TimeoutExceeded})
	require.NoError(t, p.Close())

	msgs := readStream(t, mr)
	require.Len(t, msgs, 1)
	assert.Equal(t, "-32004", msgs[0].Values["error_code"])
}

func TestObserveToolCallCountsFailures(t *testing.T) {
	p, mr, metrics := newTestPublisher(t, 100)
	mr.Close()

	start := time.Now()
	p.ObserveToolCall(context.Background(), mcp.ToolCall{Tool: "get_pool_info"})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("audit", "xadd_failed")) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestObserveToolCallDropsWhenQueueFull(t *testing.T) {
	p, mr, metrics := newQueuedPublisher(t, 100, 1)
	mr.Close()

	start := time.Now()
	for i := 0; i < 20; i++ {
		p.ObserveToolCall(context.Background(), mcp.ToolCall{Tool: fmt.Sprintf("tool-%d", i)})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Greater(t, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("audit", "dropped")), 0.0)
}

func TestCloseFlushesQueuedRecords(t *testing.T) {
	p, mr, metrics := newTestPublisher(t, 100)

	for i := 0; i < 5; i++ {
		p.ObserveToolCall(context.Background(), mcp.ToolCall{Tool: fmt.Sprintf("tool-%d", i), Outcome: mcp.OutcomeResult})
	}
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	msgs := readStream(t, mr)
	require.Len(t, msgs, 5)
	assert.Equal(t, "tool-0", msgs[0].Values["tool"])
	assert.Equal(t, "tool-4", msgs[4].Values["tool"])

	p.ObserveToolCall(context.Background(), mcp.ToolCall{Tool: "late"})
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("audit", "dropped")))
	assert.Len(t, readStream(t, mr), 5)
}

func TestNewPublisherRejectsBadURL(t *testing.T) {
	_, err := NewPublisher(Options{RedisURL: "not-a-url", Stream: "s"})
	assert.Error(t, err)
}

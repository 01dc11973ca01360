// Package audit appends a metadata record for every tool call to a Redis stream.
//
// Records carry the tool name, mode, outcome and latency. Tool arguments and
// upstream payloads are never written. Delivery is best effort: records are
// queued and written by a single goroutine, and dropped when the queue is full.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

const writeTimeout = 2 * time.Second

// DefaultQueueSize bounds records waiting to be written when Options.QueueSize is zero.
const DefaultQueueSize = 1024

// Options configures a Publisher.
type Options struct {
	RedisURL      string
	RedisPassword string
	Stream        string
	MaxLen        int64
	QueueSize     int
	Metrics       *instrumentation.Metrics
	Logger        *slog.Logger
}

type record struct {
	call mcp.ToolCall
	at   time.Time
}

// Publisher writes tool-call records with XADD, trimming the stream to MaxLen.
type Publisher struct {
	client  *redis.Client
	stream  string
	maxLen  int64
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	closed  bool
	records chan record
	done    chan struct{}
	once    sync.Once
}

// NewPublisher connects to Redis, verifies the connection and starts the writer.
func NewPublisher(opts Options) (*Publisher, error) {
	opt, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if opts.RedisPassword != "" {
		opt.Password = opts.RedisPassword
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	p := &Publisher{
		client:  client,
		stream:  opts.Stream,
		maxLen:  opts.MaxLen,
		metrics: opts.Metrics,
		logger:  logger.With("component", "audit_publisher", "stream_key", opts.Stream),
		records: make(chan record, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// Publish appends one record synchronously and returns the stream entry ID.
func (p *Publisher) Publish(ctx context.Context, call mcp.ToolCall) (string, error) {
	return p.write(ctx, record{call: call, at: time.Now()})
}

func (p *Publisher) write(ctx context.Context, rec record) (string, error) {
	call := rec.call
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Values: map[string]interface{}{
			"tool":           call.Tool,
			"mode":           call.Mode,
			"outcome":        call.Outcome,
			"error_code":     strconv.Itoa(call.ErrorCode),
			"correlation_id": call.CorrelationID,
			"latency_ms":     strconv.FormatInt(call.Latency.Milliseconds(), 10),
			"ts":             rec.at.UTC().Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("redis XADD failed: %w", err)
	}
	return id, nil
}

// ObserveToolCall queues call for the writer and returns without waiting on Redis.
// Calls observed after Close, or while the queue is full, are dropped and counted.
func (p *Publisher) ObserveToolCall(ctx context.Context, call mcp.ToolCall) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.metrics.RecordError("audit", "dropped")
		return
	}

	select {
	case p.records <- record{call: call, at: time.Now()}:
	default:
		p.metrics.RecordError("audit", "dropped")
		p.logger.Warn("audit_record_dropped",
			"tool_name", call.Tool,
			"correlation_id", call.CorrelationID,
		)
	}
}

func (p *Publisher) run() {
	defer close(p.done)

	for rec := range p.records {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		id, err := p.write(ctx, rec)
		cancel()

		if err != nil {
			p.metrics.RecordError("audit", "xadd_failed")
			p.logger.Warn("audit_publish_failed",
				"tool_name", rec.call.Tool,
				"correlation_id", rec.call.CorrelationID,
				"error", err,
			)
			continue
		}
		p.logger.Debug("audit_published", "stream_id", id, "tool_name", rec.call.Tool)
	}
}

// Close stops accepting records, waits for queued ones to be written and
// closes the Redis connection. It is safe to call more than once.
func (p *Publisher) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.records)
		p.mu.Unlock()

		<-p.done
		err = p.client.Close()
	})
	return err
}

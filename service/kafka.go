package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// --- Kafka producer for enriched events ---

// KafkaBroadcaster writes enriched events to a topic, keyed by tracker so a
// tracker's fixes stay ordered within a partition.
type KafkaBroadcaster struct {
	writer *kafka.Writer
}

func NewKafkaBroadcaster(brokers []string, topic string) *KafkaBroadcaster {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		Async:                  true,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				publishErrors.WithLabelValues("kafka").Add(float64(len(messages)))
				slog.Error("kafka write failed", "error", err, "count", len(messages))
			}
		},
	}
	return &KafkaBroadcaster{writer: w}
}

func (p *KafkaBroadcaster) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Data.TrackerIdent),
		Value: data,
	})
}

// Close flushes pending messages and closes the connection.
func (p *KafkaBroadcaster) Close() error {
	return p.writer.Close()
}

// --- Kafka consumer for raw telemetry ---

// OnBatch is called when a batch of raw telemetry objects is ready.
type OnBatch func(ctx context.Context, batch []json.RawMessage)

// KafkaConsumerConfig holds configuration for the Kafka consumer
type KafkaConsumerConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string
	BatchSize    int
	BatchTimeout time.Duration
}

// messageReader is the subset of *kafka.Reader used by KafkaConsumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads telemetry pushed to a topic and hands it over in
// batches. A message holds either one telemetry object or an array of them.
// Offsets are committed once the batch holding them has been processed, so
// records still buffered at shutdown are redelivered.
type KafkaConsumer struct {
	reader  messageReader
	cfg     KafkaConsumerConfig
	onBatch OnBatch
	mu      sync.Mutex
	batch   []json.RawMessage
	pending []kafka.Message
	timer   *time.Timer
}

// NewKafkaConsumer creates a consumer for the given config
func NewKafkaConsumer(cfg KafkaConsumerConfig, onBatch OnBatch) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})
	return newKafkaConsumer(reader, cfg, onBatch)
}

func newKafkaConsumer(reader messageReader, cfg KafkaConsumerConfig, onBatch OnBatch) *KafkaConsumer {
	return &KafkaConsumer{
		reader:  reader,
		cfg:     cfg,
		onBatch: onBatch,
		batch:   make([]json.RawMessage, 0, cfg.BatchSize),
	}
}

// Run starts consuming messages until context is cancelled
func (c *KafkaConsumer) Run(ctx context.Context) {
	slog.Info("starting Kafka consumer",
		"brokers", c.cfg.Brokers,
		"topic", c.cfg.Topic,
		"group_id", c.cfg.GroupID,
	)
	c.timer = time.NewTimer(c.cfg.BatchTimeout)
	defer c.timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if len(c.pending) > 0 {
				slog.Info("leaving buffered telemetry uncommitted",
					"records", len(c.batch),
					"messages", len(c.pending),
				)
			}
			c.mu.Unlock()
			return
		case <-c.timer.C:
			c.flush(ctx)
			c.timer.Reset(c.cfg.BatchTimeout)
		default:
			readCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			msg, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				slog.Error("fetch message failed", "error", err)
				continue
			}

			records, err := splitTelemetry(msg.Value)
			if err != nil {
				slog.Warn("invalid message", "error", err, "offset", msg.Offset)
			}

			c.mu.Lock()
			c.batch = append(c.batch, records...)
			c.pending = append(c.pending, msg)
			shouldFlush := len(c.batch) >= c.cfg.BatchSize
			c.mu.Unlock()

			if shouldFlush {
				c.flush(ctx)
				c.timer.Reset(c.cfg.BatchTimeout)
			}
		}
	}
}

// flush processes the buffered records, then commits the messages they came
// from. Nothing is committed when ctx ended during processing.
func (c *KafkaConsumer) flush(ctx context.Context) {
	c.mu.Lock()
	toFlush, msgs := c.batch, c.pending
	c.batch = make([]json.RawMessage, 0, c.cfg.BatchSize)
	c.pending = nil
	c.mu.Unlock()

	if len(toFlush) > 0 {
		c.onBatch(ctx, toFlush)
	}
	if len(msgs) == 0 || ctx.Err() != nil {
		return
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		slog.Error("commit messages failed", "error", err, "count", len(msgs))
	}
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

// splitTelemetry accepts a single JSON object or an array of objects.
func splitTelemetry(value []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("message is not valid JSON")
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}

// Package kafka consumes catalog change events from the event bus and
// applies them through the sync engine. Offsets are committed only after a
// successful apply, so delivery is at-least-once.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain"
)

const pollTimeout = time.Second

// Applier applies one decoded change event.
type Applier interface {
	Apply(ctx context.Context, ev *domain.ChangeEvent) error
}

// Config holds connection parameters for the change-event consumer.
type Config struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Consumer reads change events from one topic.
type Consumer struct {
	consumer *kafka.Consumer
	applier  Applier
	logger   *zap.Logger
	topic    string
}

// NewConsumer creates a change-event consumer. Auto-commit is disabled:
// the loop commits each message itself after the event is applied.
func NewConsumer(cfg Config, applier Applier, logger *zap.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(cfg.Brokers, ","),
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	return &Consumer{
		consumer: consumer,
		applier:  applier,
		logger:   logger,
		topic:    cfg.Topic,
	}, nil
}

// Run consumes until the context is cancelled.
//
// Commit policy: malformed payloads and permanently rejected events are
// committed (retrying cannot fix them); index store failures are not, so
// the event is redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.topic, nil); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}
	c.logger.Info("change event consumer started", zap.String("topic", c.topic))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := c.consumer.ReadMessage(pollTimeout)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			c.logger.Error("read message", zap.Error(err))
			continue
		}

		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg *kafka.Message) {
	var ev domain.ChangeEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.logger.Warn("dropping malformed change event",
			zap.Error(err),
			zap.String("offset", msg.TopicPartition.Offset.String()),
		)
		c.commit(msg)
		return
	}

	if err := c.applier.Apply(ctx, &ev); err != nil {
		var se *domain.SyncError
		if errors.As(err, &se) {
			// Transient index store failure: leave uncommitted for redelivery.
			c.logger.Error("apply change event failed", zap.Error(err))
			return
		}
		c.logger.Warn("dropping unprocessable change event",
			zap.Error(err),
			zap.String("entityType", ev.EntityType),
			zap.String("eventType", string(ev.EventType)),
		)
	}
	c.commit(msg)
}

func (c *Consumer) commit(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("commit offset", zap.Error(err))
	}
}

// Close shuts down the consumer and leaves the group.
func (c *Consumer) Close() {
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("close consumer", zap.Error(err))
	}
}

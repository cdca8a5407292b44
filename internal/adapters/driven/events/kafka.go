// Package events publishes record outcomes and finished passes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure Publisher implements the interface.
var _ driven.OutcomeObserver = (*Publisher)(nil)

// Event types.
const (
	TypeOutcome       = "outcome"
	TypeBatchFinished = "batch_finished"
)

// Event is the JSON message value.
type Event struct {
	ID         string        `json:"event_id"`
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Outcome    *OutcomeEvent `json:"outcome,omitempty"`
	Batch      *BatchEvent   `json:"batch,omitempty"`
}

// OutcomeEvent describes one terminal record outcome.
type OutcomeEvent struct {
	Queue     string   `json:"queue"`
	RecordID  int64    `json:"record_id"`
	ClientID  string   `json:"client_id"`
	Operation string   `json:"operation"`
	Code      int      `json:"code"`
	Causes    []string `json:"causes,omitempty"`
}

// BatchEvent describes a finished pass.
type BatchEvent struct {
	RunID      string         `json:"run_id"`
	Queue      string         `json:"queue"`
	Groups     int            `json:"groups"`
	Counts     map[string]int `json:"counts"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is an OutcomeObserver writing JSON events to a topic.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

// NewPublisher creates an asynchronous publisher. Delivery errors are
// logged and never reach the caller.
func NewPublisher(settings domain.KafkaSettings, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("events")
	w := &kafka.Writer{
		Addr:         kafka.TCP(settings.Brokers...),
		Topic:        settings.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("events not delivered", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{writer: w, logger: logger, now: time.Now}
}

// OutcomeRecorded publishes a record outcome keyed by client id.
func (p *Publisher) OutcomeRecorded(ctx context.Context, o domain.Outcome) {
	at := o.At
	if at.IsZero() {
		at = p.now()
	}
	p.publish(ctx, o.ClientID, Event{
		Type:       TypeOutcome,
		OccurredAt: at,
		Outcome: &OutcomeEvent{
			Queue:     o.Queue,
			RecordID:  o.RecordID,
			ClientID:  o.ClientID,
			Operation: o.Operation,
			Code:      int(o.Code),
			Causes:    o.Causes,
		},
	})
}

// BatchFinished publishes a pass summary keyed by queue. Empty passes are
// not published.
func (p *Publisher) BatchFinished(ctx context.Context, s domain.BatchSummary) {
	if s.Total() == 0 && s.Error == "" {
		return
	}
	counts := make(map[string]int, len(s.Counts))
	for code, n := range s.Counts {
		counts[strconv.Itoa(int(code))] = n
	}
	p.publish(ctx, s.Queue, Event{
		Type:       TypeBatchFinished,
		OccurredAt: p.now(),
		Batch: &BatchEvent{
			RunID:      s.RunID,
			Queue:      s.Queue,
			Groups:     s.Groups,
			Counts:     counts,
			DurationMS: s.Duration().Milliseconds(),
			Error:      s.Error,
		},
	})
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, key string, ev Event) {
	ev.ID = uuid.NewString()
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("event not encoded", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
		},
	}
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Warn("event not published", zap.String("type", ev.Type), zap.Error(err))
	}
}

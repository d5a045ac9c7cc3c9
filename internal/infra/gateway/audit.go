package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/nirik/fas"
	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/usecase"
)

// Writer is the part of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams committed audit entries to a kafka topic, keyed by
// the affected person.
type KafkaPublisher struct {
	writer Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	ctx, span := tracer.Start(ctx, "Audit.Gateway.PublishAudit")
	defer span.End()

	value, err := json.Marshal(NewAuditEvent(entry))
	if err != nil {
		span.RecordError(err)
		return err
	}

	subject := entry.AuthorID
	if entry.TargetID != nil {
		subject = *entry.TargetID
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(subject, 10)),
		Value: value,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func NewAuditEvent(entry domain.AuditLogEntry) fas.AuditEvent {
	return fas.AuditEvent{
		Type:        fas.EventTypeAudit,
		ID:          entry.ID,
		AuthorID:    entry.AuthorID,
		TargetID:    entry.TargetID,
		Description: entry.Description,
		ChangeTime:  entry.ChangeTime,
	}
}

// AuditFanout publishes to every listener and reports all failures.
type AuditFanout []usecase.AuditPublisher

func (f AuditFanout) PublishAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishAudit(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ usecase.AuditPublisher = (*KafkaPublisher)(nil)
	_ usecase.AuditPublisher = AuditFanout(nil)
)

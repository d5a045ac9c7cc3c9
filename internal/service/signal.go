package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/nirik/fas"
	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/infra/gateway"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event fas.AuditEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

func (s *SignalService) PublishAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	return s.Publish(ctx, domain.AuditChannel, gateway.NewAuditEvent(entry))
}

// Realtime forwards audit events to output until ctx is done.
func (s *SignalService) Realtime(ctx context.Context, output chan<- fas.AuditEvent) {
	pubsub := s.rdb.Subscribe(ctx, domain.AuditChannel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event fas.AuditEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "malformed audit event",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

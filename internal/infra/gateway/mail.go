package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/nirik/fas"
	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/usecase"
)

var tracer = otel.Tracer("gateway")

var ErrMailBufferFull = errors.New("mail buffer full")

const (
	defaultMailBuffer = 256
	dedupeWindow      = 10 * time.Minute
)

// MailGateway buffers notifications and drains them into a MailQueue at a
// bounded rate. Enqueue never blocks.
type MailGateway struct {
	queue   MailQueue
	jobs    chan fas.MailJob
	limiter *rate.Limiter
	recent  *cache.Cache
	now     func() time.Time
}

func NewMailGateway(queue MailQueue, perSecond float64, buffer int) *MailGateway {
	if buffer <= 0 {
		buffer = defaultMailBuffer
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &MailGateway{
		queue:   queue,
		jobs:    make(chan fas.MailJob, buffer),
		limiter: rate.NewLimiter(limit, 1),
		recent:  cache.New(dedupeWindow, 2*dedupeWindow),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (g *MailGateway) Enqueue(ctx context.Context, n domain.Notification) error {
	job := fas.MailJob{
		ID:       uuid.NewString(),
		Key:      fas.MailKey(n.To, n.Subject, n.Body, n.At),
		From:     n.From,
		To:       n.To,
		Subject:  n.Subject,
		Body:     n.Body,
		Fields:   n.Fields,
		QueuedAt: g.now(),
	}

	select {
	case g.jobs <- job:
		return nil
	default:
		return ErrMailBufferFull
	}
}

// Run publishes queued jobs until ctx is done.
func (g *MailGateway) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-g.jobs:
			if err := g.limiter.Wait(ctx); err != nil {
				return
			}
			g.deliver(ctx, job)
		}
	}
}

func (g *MailGateway) deliver(ctx context.Context, job fas.MailJob) {
	ctx, span := tracer.Start(ctx, "Mail.Gateway.Deliver")
	defer span.End()

	// Add fails when the key is already present
	if err := g.recent.Add(job.Key, job.ID, cache.DefaultExpiration); err != nil {
		slog.InfoContext(
			ctx, "dropping duplicate mail",
			slog.String("to", job.To),
			slog.String("subject", job.Subject),
			slog.String("module", "mail"),
		)
		return
	}

	body, err := json.Marshal(job)
	if err != nil {
		span.RecordError(err)
		return
	}

	if err := g.queue.Publish(ctx, body); err != nil {
		span.RecordError(err)
		g.recent.Delete(job.Key)
		slog.ErrorContext(
			ctx, "failed to publish mail",
			slog.String("error", err.Error()),
			slog.String("id", job.ID),
			slog.String("to", job.To),
			slog.String("module", "mail"),
		)
		return
	}

	slog.DebugContext(
		ctx, "mail queued",
		slog.String("id", job.ID),
		slog.String("to", job.To),
		slog.String("module", "mail"),
	)
}

var _ usecase.Notifier = (*MailGateway)(nil)

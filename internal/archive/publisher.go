package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobsearch/archive")

// JobPostingsSubject carries one normalized posting per message.
const JobPostingsSubject = "jobs.aggregated"

// Publisher emits aggregated postings for offline archival. The search path
// treats publishing as fire-and-forget: a publish failure is logged by the
// caller and never surfaces to the user.
type Publisher interface {
	PublishJobPostings(ctx context.Context, postings []models.JobPosting) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewPublisher connects to NATS when configured and falls back to a noop
// publisher otherwise, so searches never depend on messaging being up.
func NewPublisher(logger *zap.Logger, cfg *config.Config) (Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS not configured, posting archive disabled")
		return NoopPublisher{}, nil
	}

	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	}

	conn, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}

	return &natsPublisher{conn: conn, logger: logger}, nil
}

func (p *natsPublisher) PublishJobPostings(ctx context.Context, postings []models.JobPosting) error {
	_, span := tracer.Start(ctx, "PublishJobPostings")
	defer span.End()
	span.SetAttributes(telemetry.Int("postings.count", len(postings)))

	for _, posting := range postings {
		data, err := json.Marshal(posting)
		if err != nil {
			span.RecordError(err)
			return errors.Internal("marshaling job posting", err)
		}

		if err := p.conn.Publish(JobPostingsSubject, data); err != nil {
			span.RecordError(err)
			p.logger.Error("failed to publish job posting",
				zap.String("key", posting.Key()),
				zap.Error(err))
			return errors.Unavailable("publishing to NATS", err)
		}
	}

	p.logger.Debug("published aggregated postings",
		zap.Int("count", len(postings)),
		zap.String("subject", JobPostingsSubject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher drops everything; used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishJobPostings(context.Context, []models.JobPosting) error { return nil }

func (NoopPublisher) Close() {}

package archive

import (
	"context"
	"encoding/json"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const archiverQueueGroup = "jobsearch-archiver"

// Subscriber consumes aggregated postings off NATS and archives them.
type Subscriber struct {
	logger *zap.Logger
	nc     *nats.Conn
	store  *Store
	sub    *nats.Subscription
}

func NewSubscriber(logger *zap.Logger, nc *nats.Conn, store *Store) *Subscriber {
	return &Subscriber{
		logger: logger,
		nc:     nc,
		store:  store,
	}
}

func (s *Subscriber) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := s.nc.QueueSubscribe(JobPostingsSubject, archiverQueueGroup, s.handlePosting)
	if err != nil {
		return err
	}

	s.sub = sub
	s.logger.Info("registered archive subscription",
		zap.String("subject", JobPostingsSubject),
		zap.String("queue", archiverQueueGroup))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.sub.Unsubscribe()
		},
	})

	return nil
}

func (s *Subscriber) handlePosting(msg *nats.Msg) {
	ctx, span := tracer.Start(context.Background(), "handlePosting")
	defer span.End()

	var posting models.JobPosting
	if err := json.Unmarshal(msg.Data, &posting); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to decode archived posting",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}

	if err := s.store.Insert(ctx, posting); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to archive posting",
			zap.String("key", posting.Key()),
			zap.Error(err))
		return
	}
}

package archive

import (
	"context"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var postingNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// PostingID derives a stable UUID from the compound (source, id) identity,
// so re-archiving the same posting replaces rather than duplicates it.
func PostingID(posting models.JobPosting) string {
	return uuid.NewSHA1(postingNamespace, []byte(posting.Key())).String()
}

// Store writes normalized postings into the ClickHouse archive.
type Store struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func NewStore(conn clickhouse.Conn, logger *zap.Logger) *Store {
	return &Store{conn: conn, logger: logger}
}

func (s *Store) Insert(ctx context.Context, posting models.JobPosting) error {
	query := `
		INSERT INTO job_postings (
			id, source, source_id, title, company, location, description,
			url, posted_at, salary_min, salary_max, currency, category,
			contract_type, contract_time, archived_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	if err := s.conn.Exec(ctx, query,
		PostingID(posting),
		string(posting.Source),
		posting.ID,
		posting.Title,
		posting.Company,
		posting.Location,
		posting.Description,
		posting.URL,
		posting.PostedAt,
		posting.SalaryMin,
		posting.SalaryMax,
		posting.Currency,
		posting.Category,
		posting.ContractType,
		posting.ContractTime,
		time.Now().UTC(),
	); err != nil {
		return errors.Internal("inserting archived posting", err)
	}

	s.logger.Debug("archived job posting", zap.String("key", posting.Key()))
	return nil
}

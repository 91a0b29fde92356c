package archive

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

type Migration struct {
	Version     int
	Description string
	Up          string
}

// Migrations holds the archive schema in order. The archiver applies any
// pending entries at startup.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "Create job_postings table",
		Up: `
			CREATE TABLE IF NOT EXISTS job_postings (
				id UUID,
				source String,
				source_id String,
				title String,
				company String,
				location String,
				description String,
				url String,
				posted_at Nullable(DateTime),
				salary_min Nullable(Float64),
				salary_max Nullable(Float64),
				currency String,
				category String,
				contract_type String,
				contract_time String,
				archived_at DateTime,
				PRIMARY KEY (id)
			) ENGINE = ReplacingMergeTree(archived_at)
			PARTITION BY toYYYYMM(archived_at)
			ORDER BY (id, archived_at)
		`,
	},
}

type Migrator struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func NewMigrator(conn clickhouse.Conn, logger *zap.Logger) *Migrator {
	return &Migrator{conn: conn, logger: logger}
}

// Run creates the bookkeeping table and applies pending migrations.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			version Int32,
			description String,
			applied_at DateTime,
			PRIMARY KEY (version)
		) ENGINE = MergeTree()
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, migration := range Migrations {
		if applied[migration.Version] {
			continue
		}
		if err := m.conn.Exec(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		if err := m.conn.Exec(ctx, `
			INSERT INTO migrations (version, description, applied_at)
			VALUES (?, ?, now())
		`, migration.Version, migration.Description); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		m.logger.Info("applied archive migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))
	}

	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.Query(ctx, "SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int32
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[int(version)] = true
	}

	return applied, nil
}

package archive

import (
	"context"
	"strings"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// NewClickHouseConn opens and pings the archive database.
func NewClickHouseConn(ctx context.Context, cfg *config.Config) (clickhouse.Conn, error) {
	hostAndParams := strings.Split(cfg.ClickHouseDSN, "?")
	host := hostAndParams[0]

	conn, err := clickhouse.Open(&clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{host},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		},
		DialTimeout:     time.Second * 30,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
	})
	if err != nil {
		return nil, errors.Unavailable("opening clickhouse connection", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, errors.Unavailable("pinging clickhouse", err)
	}

	return conn, nil
}

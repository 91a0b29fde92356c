package source

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"go.uber.org/zap"
)

// JoobleJob mirrors one listing in a Jooble response. Jooble reports salary
// only as free text, so normalized postings from this source never carry a
// structured salary.
type JoobleJob struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Location string      `json:"location"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Type     string      `json:"type"`
	Link     string      `json:"link"`
	Company  string      `json:"company"`
	Updated  string      `json:"updated"`
}

func (JoobleJob) Source() models.Source { return models.SourceJooble }

type JoobleAdapter struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
}

func NewJooble(cfg *config.Config, logger *zap.Logger) *JoobleAdapter {
	return &JoobleAdapter{
		client: &http.Client{Timeout: cfg.SourceTimeout},
		logger: logger,
		config: cfg,
	}
}

func (a *JoobleAdapter) Source() models.Source { return models.SourceJooble }

// Fetch queries Jooble. The API key is the final URL path segment and the
// query is a JSON POST body, pagination included.
func (a *JoobleAdapter) Fetch(ctx context.Context, filters models.SearchFilters) ([]Raw, error) {
	ctx, span := tracer.Start(ctx, "Jooble.Fetch")
	defer span.End()

	if a.config.JoobleAPIKey == "" {
		return nil, errors.InvalidInput("jooble credentials not configured", nil)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}

	body := struct {
		Keywords string `json:"keywords"`
		Location string `json:"location"`
		Page     int    `json:"page"`
	}{
		Keywords: filters.Keywords,
		Location: filters.Location,
		Page:     page,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal("marshaling jooble request", err)
	}

	reqURL := a.config.JoobleBaseURL + "/" + a.config.JoobleAPIKey

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Internal("creating jooble request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing jooble request", err)
	}

	var envelope struct {
		TotalCount int         `json:"totalCount"`
		Jobs       []JoobleJob `json:"jobs"`
	}
	if err := decodeResponse(resp, models.SourceJooble, &envelope); err != nil {
		return nil, err
	}

	a.logger.Debug("fetched jooble listings",
		zap.Int("count", len(envelope.Jobs)),
		zap.Int("total", envelope.TotalCount),
		zap.Int("page", page))

	raws := make([]Raw, 0, len(envelope.Jobs))
	for _, job := range envelope.Jobs {
		raws = append(raws, job)
	}
	return raws, nil
}

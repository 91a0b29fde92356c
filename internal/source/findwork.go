package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"

	"go.uber.org/zap"
)

// FindWorkJob mirrors one listing in a FindWork response. FindWork has no
// salary or country fields at all.
type FindWorkJob struct {
	ID             int64    `json:"id"`
	Role           string   `json:"role"`
	CompanyName    string   `json:"company_name"`
	Location       string   `json:"location"`
	Remote         bool     `json:"remote"`
	Text           string   `json:"text"`
	DatePosted     string   `json:"date_posted"`
	URL            string   `json:"url"`
	EmploymentType string   `json:"employment_type"`
	Keywords       []string `json:"keywords"`
}

func (FindWorkJob) Source() models.Source { return models.SourceFindWork }

type FindWorkAdapter struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
}

func NewFindWork(cfg *config.Config, logger *zap.Logger) *FindWorkAdapter {
	return &FindWorkAdapter{
		client: &http.Client{Timeout: cfg.SourceTimeout},
		logger: logger,
		config: cfg,
	}
}

func (a *FindWorkAdapter) Source() models.Source { return models.SourceFindWork }

// Fetch queries FindWork. Auth is a token header; remote is a boolean query
// flag.
func (a *FindWorkAdapter) Fetch(ctx context.Context, filters models.SearchFilters) ([]Raw, error) {
	ctx, span := tracer.Start(ctx, "FindWork.Fetch")
	defer span.End()

	if a.config.FindWorkAPIKey == "" {
		return nil, errors.InvalidInput("findwork credentials not configured", nil)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	if filters.Keywords != "" {
		params.Set("search", filters.Keywords)
	}
	if filters.Location != "" {
		params.Set("location", filters.Location)
	}
	if filters.IsRemote {
		params.Set("remote", "true")
	}
	if filters.SortBy != "" {
		params.Set("sort_by", filters.SortBy)
	}
	params.Set("page", strconv.Itoa(page))

	reqURL := a.config.FindWorkBaseURL + "/jobs/?" + params.Encode()
	span.SetAttributes(
		telemetry.Bool("findwork.remote", filters.IsRemote),
		telemetry.Int("findwork.page", page),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Internal("creating findwork request", err)
	}
	req.Header.Set("Authorization", "Token "+a.config.FindWorkAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing findwork request", err)
	}

	var envelope struct {
		Count   int           `json:"count"`
		Results []FindWorkJob `json:"results"`
	}
	if err := decodeResponse(resp, models.SourceFindWork, &envelope); err != nil {
		return nil, err
	}

	a.logger.Debug("fetched findwork listings",
		zap.Int("count", len(envelope.Results)),
		zap.Int("page", page))

	raws := make([]Raw, 0, len(envelope.Results))
	for _, job := range envelope.Results {
		raws = append(raws, job)
	}
	return raws, nil
}

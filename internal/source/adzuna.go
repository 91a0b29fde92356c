package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/cache"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"

	"go.uber.org/zap"
)

// DefaultAdzunaCountry is used when the filters carry no country; Adzuna
// requires one in the URL path.
const DefaultAdzunaCountry = "gb"

// AdzunaJob mirrors one listing in an Adzuna search response.
type AdzunaJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL string   `json:"redirect_url"`
	Created     string   `json:"created"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	Category    struct {
		Tag   string `json:"tag"`
		Label string `json:"label"`
	} `json:"category"`
	ContractType string `json:"contract_type"`
	ContractTime string `json:"contract_time"`
}

func (AdzunaJob) Source() models.Source { return models.SourceAdzuna }

type AdzunaAdapter struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
	cache  cache.Cache
}

func NewAdzuna(cfg *config.Config, logger *zap.Logger, c cache.Cache) *AdzunaAdapter {
	return &AdzunaAdapter{
		client: &http.Client{Timeout: cfg.SourceTimeout},
		logger: logger,
		config: cfg,
		cache:  c,
	}
}

func (a *AdzunaAdapter) Source() models.Source { return models.SourceAdzuna }

// Fetch queries the Adzuna search endpoint. The page is part of the URL
// path, and contract time maps to the independent full_time/part_time flags.
func (a *AdzunaAdapter) Fetch(ctx context.Context, filters models.SearchFilters) ([]Raw, error) {
	ctx, span := tracer.Start(ctx, "Adzuna.Fetch")
	defer span.End()

	if a.config.AdzunaAppID == "" || a.config.AdzunaAppKey == "" {
		return nil, errors.InvalidInput("adzuna credentials not configured", nil)
	}

	country := filters.Country
	if country == "" {
		country = DefaultAdzunaCountry
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s/jobs/%s/search/%d", a.config.AdzunaBaseURL, country, page)

	params := url.Values{}
	params.Set("app_id", a.config.AdzunaAppID)
	params.Set("app_key", a.config.AdzunaAppKey)
	params.Set("results_per_page", strconv.Itoa(a.config.PageSize))
	if filters.Keywords != "" {
		params.Set("what", filters.Keywords)
	}
	if filters.Location != "" {
		params.Set("where", filters.Location)
	}
	if filters.Category != "" {
		params.Set("category", filters.Category)
	}
	if filters.SalaryMin > 0 {
		params.Set("salary_min", strconv.FormatFloat(filters.SalaryMin, 'f', -1, 64))
	}
	if filters.SortBy != "" {
		params.Set("sort_by", filters.SortBy)
	}
	if filters.DateRangeDays > 0 {
		params.Set("max_days_old", strconv.Itoa(filters.DateRangeDays))
	}
	switch filters.ContractTime {
	case "full_time":
		params.Set("full_time", "1")
	case "part_time":
		params.Set("part_time", "1")
	}
	switch filters.ContractType {
	case "contract":
		params.Set("contract", "1")
	case "permanent":
		params.Set("permanent", "1")
	}

	reqURL := endpoint + "?" + params.Encode()
	span.SetAttributes(
		telemetry.String("adzuna.country", country),
		telemetry.Int("adzuna.page", page),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Internal("creating adzuna request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing adzuna request", err)
	}

	var envelope struct {
		Results []AdzunaJob `json:"results"`
		Count   int         `json:"count"`
	}
	if err := decodeResponse(resp, models.SourceAdzuna, &envelope); err != nil {
		return nil, err
	}

	a.logger.Debug("fetched adzuna listings",
		zap.Int("count", len(envelope.Results)),
		zap.String("country", country),
		zap.Int("page", page))

	raws := make([]Raw, 0, len(envelope.Results))
	for _, job := range envelope.Results {
		raws = append(raws, job)
	}
	return raws, nil
}

// Categories fetches the country-scoped category taxonomy. Responses are
// cached since the taxonomy changes rarely.
func (a *AdzunaAdapter) Categories(ctx context.Context, country string) (models.CategoryList, error) {
	ctx, span := tracer.Start(ctx, "Adzuna.Categories")
	defer span.End()

	if a.config.AdzunaAppID == "" || a.config.AdzunaAppKey == "" {
		return nil, errors.InvalidInput("adzuna credentials not configured", nil)
	}
	if country == "" {
		country = DefaultAdzunaCountry
	}

	cacheKey := fmt.Sprintf("adzuna:categories:%s", country)
	var cached models.CategoryList
	err := a.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		return cached, nil
	} else if err != cache.ErrNotFound {
		a.logger.Warn("cache error for adzuna categories", zap.Error(err))
	}

	params := url.Values{}
	params.Set("app_id", a.config.AdzunaAppID)
	params.Set("app_key", a.config.AdzunaAppKey)
	reqURL := fmt.Sprintf("%s/jobs/%s/categories?%s", a.config.AdzunaBaseURL, country, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Internal("creating adzuna categories request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing adzuna categories request", err)
	}

	var envelope struct {
		Results []models.Category `json:"results"`
	}
	if err := decodeResponse(resp, models.SourceAdzuna, &envelope); err != nil {
		return nil, err
	}

	categories := models.CategoryList(envelope.Results)
	if err := a.cache.Set(ctx, cacheKey, categories, 0); err != nil {
		a.logger.Warn("failed to cache adzuna categories", zap.Error(err))
	}

	return categories, nil
}

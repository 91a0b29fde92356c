package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"go.uber.org/zap"
)

// ReedJob mirrors one listing in a Reed search response.
type ReedJob struct {
	JobID          int64    `json:"jobId"`
	EmployerName   string   `json:"employerName"`
	JobTitle       string   `json:"jobTitle"`
	LocationName   string   `json:"locationName"`
	MinimumSalary  *float64 `json:"minimumSalary"`
	MaximumSalary  *float64 `json:"maximumSalary"`
	Currency       string   `json:"currency"`
	Date           string   `json:"date"`
	JobDescription string   `json:"jobDescription"`
	JobURL         string   `json:"jobUrl"`
}

func (ReedJob) Source() models.Source { return models.SourceReed }

type ReedAdapter struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
}

func NewReed(cfg *config.Config, logger *zap.Logger) *ReedAdapter {
	return &ReedAdapter{
		client: &http.Client{Timeout: cfg.SourceTimeout},
		logger: logger,
		config: cfg,
	}
}

func (a *ReedAdapter) Source() models.Source { return models.SourceReed }

// Fetch queries Reed. Auth is basic with the API key as username and an
// empty password; pagination is skip/take.
func (a *ReedAdapter) Fetch(ctx context.Context, filters models.SearchFilters) ([]Raw, error) {
	ctx, span := tracer.Start(ctx, "Reed.Fetch")
	defer span.End()

	if a.config.ReedAPIKey == "" {
		return nil, errors.InvalidInput("reed credentials not configured", nil)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	if filters.Keywords != "" {
		params.Set("keywords", filters.Keywords)
	}
	if filters.Location != "" {
		params.Set("locationName", filters.Location)
	}
	if filters.SalaryMin > 0 {
		params.Set("minimumSalary", strconv.FormatFloat(filters.SalaryMin, 'f', -1, 64))
	}
	switch filters.ContractTime {
	case "full_time":
		params.Set("fullTime", "true")
	case "part_time":
		params.Set("partTime", "true")
	}
	switch filters.ContractType {
	case "contract":
		params.Set("contract", "true")
	case "permanent":
		params.Set("permanent", "true")
	}
	params.Set("resultsToTake", strconv.Itoa(a.config.PageSize))
	params.Set("resultsToSkip", strconv.Itoa((page-1)*a.config.PageSize))

	reqURL := a.config.ReedBaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Internal("creating reed request", err)
	}
	req.SetBasicAuth(a.config.ReedAPIKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing reed request", err)
	}

	var envelope struct {
		Results      []ReedJob `json:"results"`
		TotalResults int       `json:"totalResults"`
	}
	if err := decodeResponse(resp, models.SourceReed, &envelope); err != nil {
		return nil, err
	}

	a.logger.Debug("fetched reed listings",
		zap.Int("count", len(envelope.Results)),
		zap.Int("page", page))

	raws := make([]Raw, 0, len(envelope.Results))
	for _, job := range envelope.Results {
		raws = append(raws, job)
	}
	return raws, nil
}

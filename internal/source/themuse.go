package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"go.uber.org/zap"
)

// MuseJob mirrors one listing in a Muse response.
type MuseJob struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Contents string `json:"contents"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	Locations []struct {
		Name string `json:"name"`
	} `json:"locations"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
	Levels []struct {
		Name string `json:"name"`
	} `json:"levels"`
	PublicationDate string `json:"publication_date"`
	Refs            struct {
		LandingPage string `json:"landing_page"`
	} `json:"refs"`
}

func (MuseJob) Source() models.Source { return models.SourceTheMuse }

type MuseAdapter struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
}

func NewMuse(cfg *config.Config, logger *zap.Logger) *MuseAdapter {
	return &MuseAdapter{
		client: &http.Client{Timeout: cfg.SourceTimeout},
		logger: logger,
		config: cfg,
	}
}

func (a *MuseAdapter) Source() models.Source { return models.SourceTheMuse }

// Fetch queries The Muse. The public API needs no credentials and has no
// keyword parameter, so returned records are post-filtered by substring
// match on title and body.
func (a *MuseAdapter) Fetch(ctx context.Context, filters models.SearchFilters) ([]Raw, error) {
	ctx, span := tracer.Start(ctx, "TheMuse.Fetch")
	defer span.End()

	page := filters.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if filters.Location != "" {
		params.Add("location", filters.Location)
	}
	if filters.IsRemote {
		params.Add("location", "Flexible / Remote")
	}

	reqURL := a.config.MuseBaseURL + "/jobs?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Internal("creating muse request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing muse request", err)
	}

	var envelope struct {
		Page      int       `json:"page"`
		PageCount int       `json:"page_count"`
		Results   []MuseJob `json:"results"`
	}
	if err := decodeResponse(resp, models.SourceTheMuse, &envelope); err != nil {
		return nil, err
	}

	matched := filterMuseJobs(envelope.Results, filters.Keywords)

	a.logger.Debug("fetched muse listings",
		zap.Int("count", len(envelope.Results)),
		zap.Int("matched", len(matched)),
		zap.Int("page", page))

	raws := make([]Raw, 0, len(matched))
	for _, job := range matched {
		raws = append(raws, job)
	}
	return raws, nil
}

func filterMuseJobs(jobs []MuseJob, keywords string) []MuseJob {
	keywords = strings.TrimSpace(strings.ToLower(keywords))
	if keywords == "" {
		return jobs
	}

	matched := make([]MuseJob, 0, len(jobs))
	for _, job := range jobs {
		if strings.Contains(strings.ToLower(job.Name), keywords) ||
			strings.Contains(strings.ToLower(job.Contents), keywords) {
			matched = append(matched, job)
		}
	}
	return matched
}

package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/source"

	"go.uber.org/zap"
)

// Context carries the search-scoped inputs normalization depends on. The
// same raw record with the same context always yields the same posting.
type Context struct {
	// CountryCode drives currency inference for sources whose salaries are
	// country-scoped (Adzuna).
	CountryCode string
}

type Normalizer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Record maps one raw record into the canonical posting shape, or nil when
// the record is unusable. It never lets a failure escape: a panic anywhere
// in the mapping is logged and converted into a dropped record.
func (n *Normalizer) Record(raw source.Raw, nctx Context) (posting *models.JobPosting) {
	// The recover path must not touch the record itself; %T is the only safe
	// label for a value that just blew up.
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("normalization failed, dropping record",
				zap.String("variant", fmt.Sprintf("%T", raw)),
				zap.Any("error", r))
			posting = nil
		}
	}()

	switch rec := raw.(type) {
	case source.AdzunaJob:
		return n.adzuna(rec, nctx)
	case source.FindWorkJob:
		return n.findWork(rec)
	case source.JoobleJob:
		return n.jooble(rec)
	case source.ReedJob:
		return n.reed(rec)
	case source.MuseJob:
		return n.muse(rec)
	default:
		n.logger.Warn("unknown raw record variant",
			zap.String("source", string(raw.Source())))
		return nil
	}
}

func (n *Normalizer) adzuna(rec source.AdzunaJob, nctx Context) *models.JobPosting {
	if rec.ID == "" {
		return nil
	}

	min, max := salaryRange(rec.SalaryMin, rec.SalaryMax)

	return &models.JobPosting{
		ID:           rec.ID,
		Title:        orDefault(rec.Title, models.DefaultTitle),
		Company:      orDefault(rec.Company.DisplayName, models.DefaultCompany),
		Location:     orDefault(rec.Location.DisplayName, models.DefaultLocation),
		Description:  rec.Description,
		URL:          rec.RedirectURL,
		Source:       models.SourceAdzuna,
		PostedAt:     parseTime(rec.Created, time.RFC3339, "2006-01-02"),
		SalaryMin:    min,
		SalaryMax:    max,
		Currency:     CurrencyForCountry(nctx.CountryCode),
		Category:     orDefault(rec.Category.Label, models.DefaultCategory),
		ContractType: rec.ContractType,
		ContractTime: rec.ContractTime,
	}
}

func (n *Normalizer) findWork(rec source.FindWorkJob) *models.JobPosting {
	if rec.ID == 0 {
		return nil
	}

	location := rec.Location
	if location == "" && rec.Remote {
		location = "Remote"
	}

	category := models.DefaultCategory
	if len(rec.Keywords) > 0 && rec.Keywords[0] != "" {
		category = rec.Keywords[0]
	}

	return &models.JobPosting{
		ID:           strconv.FormatInt(rec.ID, 10),
		Title:        orDefault(rec.Role, models.DefaultTitle),
		Company:      orDefault(rec.CompanyName, models.DefaultCompany),
		Location:     orDefault(location, models.DefaultLocation),
		Description:  rec.Text,
		URL:          rec.URL,
		Source:       models.SourceFindWork,
		PostedAt:     parseTime(rec.DatePosted, time.RFC3339, "2006-01-02"),
		Currency:     "USD",
		Category:     category,
		ContractTime: rec.EmploymentType,
	}
}

func (n *Normalizer) jooble(rec source.JoobleJob) *models.JobPosting {
	id := rec.ID.String()
	if id == "" || id == "0" {
		return nil
	}

	return &models.JobPosting{
		ID:           id,
		Title:        orDefault(rec.Title, models.DefaultTitle),
		Company:      orDefault(rec.Company, models.DefaultCompany),
		Location:     orDefault(rec.Location, models.DefaultLocation),
		Description:  rec.Snippet,
		URL:          rec.Link,
		Source:       models.SourceJooble,
		PostedAt:     parseTime(rec.Updated, time.RFC3339, "2006-01-02T15:04:05.9999999"),
		Currency:     "USD",
		Category:     models.DefaultCategory,
		ContractTime: rec.Type,
	}
}

func (n *Normalizer) reed(rec source.ReedJob) *models.JobPosting {
	if rec.JobID == 0 {
		return nil
	}

	min, max := salaryRange(rec.MinimumSalary, rec.MaximumSalary)

	return &models.JobPosting{
		ID:          strconv.FormatInt(rec.JobID, 10),
		Title:       orDefault(rec.JobTitle, models.DefaultTitle),
		Company:     orDefault(rec.EmployerName, models.DefaultCompany),
		Location:    orDefault(rec.LocationName, models.DefaultLocation),
		Description: rec.JobDescription,
		URL:         rec.JobURL,
		Source:      models.SourceReed,
		PostedAt:    parseTime(rec.Date, "02/01/2006", time.RFC3339),
		SalaryMin:   min,
		SalaryMax:   max,
		Currency:    orDefault(rec.Currency, "GBP"),
		Category:    models.DefaultCategory,
	}
}

func (n *Normalizer) muse(rec source.MuseJob) *models.JobPosting {
	if rec.ID == 0 {
		return nil
	}

	location := ""
	if len(rec.Locations) > 0 {
		location = rec.Locations[0].Name
	}

	category := models.DefaultCategory
	if len(rec.Categories) > 0 && rec.Categories[0].Name != "" {
		category = rec.Categories[0].Name
	}

	return &models.JobPosting{
		ID:          strconv.FormatInt(rec.ID, 10),
		Title:       orDefault(rec.Name, models.DefaultTitle),
		Company:     orDefault(rec.Company.Name, models.DefaultCompany),
		Location:    orDefault(location, models.DefaultLocation),
		Description: rec.Contents,
		URL:         rec.Refs.LandingPage,
		Source:      models.SourceTheMuse,
		PostedAt:    parseTime(rec.PublicationDate, time.RFC3339, "2006-01-02T15:04:05.999999Z"),
		Currency:    "USD",
		Category:    category,
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// salaryRange drops zero minimums (sources report 0 for "unknown") and
// maximums that do not exceed the minimum.
func salaryRange(min, max *float64) (*float64, *float64) {
	if min != nil && *min == 0 {
		min = nil
	}
	if max != nil && *max == 0 {
		max = nil
	}
	if max != nil && min != nil && *max <= *min {
		max = nil
	}
	return min, max
}

func parseTime(value string, layouts ...string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Source identifies which provider a posting came from. Posting IDs are only
// unique within a source, so (Source, ID) is the real identity.
type Source string

const (
	SourceAdzuna   Source = "Adzuna"
	SourceFindWork Source = "FindWork"
	SourceJooble   Source = "Jooble"
	SourceReed     Source = "Reed"
	SourceTheMuse  Source = "The Muse"
)

func AllSources() []Source {
	return []Source{SourceAdzuna, SourceFindWork, SourceJooble, SourceReed, SourceTheMuse}
}

func ParseSource(s string) (Source, error) {
	for _, src := range AllSources() {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown job source %q", s)
}

// Sentinel values applied by normalization when a source omits a field.
const (
	DefaultTitle    = "No Title Provided"
	DefaultCompany  = "N/A"
	DefaultLocation = "N/A"
	DefaultCategory = "General"
)

type JobPosting struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	URL          string     `json:"url,omitempty"`
	Source       Source     `json:"source"`
	PostedAt     *time.Time `json:"posted_at"`
	SalaryMin    *float64   `json:"salary_min"`
	SalaryMax    *float64   `json:"salary_max"`
	Currency     string     `json:"currency"`
	Category     string     `json:"category"`
	ContractType string     `json:"contract_type,omitempty"`
	ContractTime string     `json:"contract_time,omitempty"`
}

// Key returns the compound identity of a posting.
func (p JobPosting) Key() string {
	return fmt.Sprintf("%s:%s", p.Source, p.ID)
}

// HasSalary reports whether the posting carries a usable minimum salary.
// The aggregator's ordering partitions on this.
func (p JobPosting) HasSalary() bool {
	return p.SalaryMin != nil
}

func (p JobPosting) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *JobPosting) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

// Category is one entry of a source's category taxonomy. Taxonomies are
// country-scoped.
type Category struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

type CategoryList []Category

func (l CategoryList) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *CategoryList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}

package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"

	"go.uber.org/zap"
)

// MaxRecommendations caps the number of course ids returned regardless of
// what the provider emits.
const MaxRecommendations = 3

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Recommender asks a chat-completions provider which catalog courses are
// relevant to a job posting. Unlike job normalization, its failures are hard
// errors: a recommendation is a single explicit user action, so the caller
// gets the error and a retry affordance instead of a silent drop.
type Recommender struct {
	client  *http.Client
	logger  *zap.Logger
	config  *config.Config
	catalog []Course
}

func New(cfg *config.Config, logger *zap.Logger, catalog []Course) *Recommender {
	return &Recommender{
		client:  &http.Client{Timeout: cfg.CompletionsTimeout},
		logger:  logger,
		config:  cfg,
		catalog: catalog,
	}
}

const systemPrompt = `You match job postings to training courses. Given a job and a course catalog, reply with a JSON array containing the ids of at most 3 relevant courses from the catalog, most relevant first. Reply with the JSON array only. If no course is relevant, reply with [].`

// RecommendCourses returns up to MaxRecommendations catalog course ids for
// the given job. A job without both a title and a description yields an
// empty result immediately, without calling the provider.
func (r *Recommender) RecommendCourses(ctx context.Context, job models.JobPosting) ([]string, error) {
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Description) == "" {
		return []string{}, nil
	}

	if r.config.CompletionsAPIKey == "" {
		return nil, errors.InvalidInput("completions credentials not configured", nil)
	}

	reqBody := chatRequest{
		Model: r.config.CompletionsModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: r.buildPrompt(job)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Internal("marshaling completions request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.config.CompletionsBaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Internal("creating completions request", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.config.CompletionsAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("calling completions provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Unavailable(fmt.Sprintf("completions provider returned status %d", resp.StatusCode), nil)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, errors.Internal("decoding completions response", err)
	}
	if len(chat.Choices) == 0 {
		return nil, errors.Internal("completions response contained no choices", nil)
	}

	content := stripCodeFence(chat.Choices[0].Message.Content)

	var ids []string
	if err := json.Unmarshal([]byte(content), &ids); err != nil {
		return nil, errors.Internal("parsing recommended course ids", err)
	}

	recommended := r.filterKnown(ids)
	if len(recommended) > MaxRecommendations {
		recommended = recommended[:MaxRecommendations]
	}

	r.logger.Debug("recommended courses",
		zap.String("job", job.Key()),
		zap.Strings("courses", recommended))
	return recommended, nil
}

func (r *Recommender) buildPrompt(job models.JobPosting) string {
	var b strings.Builder
	b.WriteString("Course catalog:\n")
	for _, course := range r.catalog {
		fmt.Fprintf(&b, "- id: %s, title: %s, keywords: %s\n",
			course.ID, course.Title, strings.Join(course.Keywords, ", "))
	}
	fmt.Fprintf(&b, "\nJob title: %s\nJob description:\n%s\n", job.Title, job.Description)
	return b.String()
}

func (r *Recommender) filterKnown(ids []string) []string {
	known := make(map[string]bool, len(r.catalog))
	for _, course := range r.catalog {
		known[course.ID] = true
	}

	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] && !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

// stripCodeFence removes a markdown code fence wrapper, with or without a
// language tag, since providers routinely wrap JSON replies in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.HasPrefix(s, "[") {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

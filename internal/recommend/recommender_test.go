package recommend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/recommend"

	"go.uber.org/zap"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		CompletionsAPIKey:  "sk-test",
		CompletionsBaseURL: baseURL,
		CompletionsModel:   "gpt-4o-mini",
		CompletionsTimeout: 5 * time.Second,
	}
}

func newRecommender(cfg *config.Config) *recommend.Recommender {
	return recommend.New(cfg, zap.NewNop(), recommend.DefaultCatalog())
}

func chatReply(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func fullJob() models.JobPosting {
	return models.JobPosting{
		Title:       "Executive Assistant",
		Description: "Calendar management, travel booking, inbox triage.",
	}
}

func TestRecommendCourses_SkipsSparseJobs(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	r := newRecommender(testConfig(srv.URL))
	cases := []struct {
		name string
		job  models.JobPosting
	}{
		{"no title", models.JobPosting{Description: "something"}},
		{"no description", models.JobPosting{Title: "something"}},
		{"whitespace title", models.JobPosting{Title: "   ", Description: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.RecommendCourses(context.Background(), tc.job)
			if err != nil {
				t.Fatalf("RecommendCourses returned error: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("RecommendCourses = %v, want empty non-nil slice", got)
			}
		})
	}
	if calls != 0 {
		t.Errorf("provider received %d requests, want 0 for sparse jobs", calls)
	}
}

func TestRecommendCourses_MissingCredentials(t *testing.T) {
	cfg := testConfig("http://unreachable.invalid")
	cfg.CompletionsAPIKey = ""
	r := newRecommender(cfg)

	_, err := r.RecommendCourses(context.Background(), fullJob())
	if err == nil {
		t.Fatal("RecommendCourses succeeded without credentials")
	}
	if errors.TypeOf(err) != errors.ErrTypeInvalidInput {
		t.Errorf("error type = %v, want INVALID_INPUT", errors.TypeOf(err))
	}
}

func TestRecommendCourses_ParsesPlainJSON(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(chatReply(`["executive-va", "bookkeeping"]`))
	}))
	defer srv.Close()

	r := newRecommender(testConfig(srv.URL))
	got, err := r.RecommendCourses(context.Background(), fullJob())
	if err != nil {
		t.Fatalf("RecommendCourses returned error: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer sk-test", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v, want system then user", gotReq.Messages)
	}
	if len(got) != 2 || got[0] != "executive-va" || got[1] != "bookkeeping" {
		t.Errorf("courses = %v, want [executive-va bookkeeping]", got)
	}
}

func TestRecommendCourses_StripsCodeFence(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bare fence", "```\n[\"executive-va\"]\n```"},
		{"json fence", "```json\n[\"executive-va\"]\n```"},
		{"no fence", `["executive-va"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatReply(tc.content))
			}))
			defer srv.Close()

			r := newRecommender(testConfig(srv.URL))
			got, err := r.RecommendCourses(context.Background(), fullJob())
			if err != nil {
				t.Fatalf("RecommendCourses returned error: %v", err)
			}
			if len(got) != 1 || got[0] != "executive-va" {
				t.Errorf("courses = %v, want [executive-va]", got)
			}
		})
	}
}

func TestRecommendCourses_FiltersUnknownAndCaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatReply(
			`["made-up", "executive-va", "bookkeeping", "executive-va", "data-entry", "social-media"]`))
	}))
	defer srv.Close()

	r := newRecommender(testConfig(srv.URL))
	got, err := r.RecommendCourses(context.Background(), fullJob())
	if err != nil {
		t.Fatalf("RecommendCourses returned error: %v", err)
	}

	want := []string{"executive-va", "bookkeeping", "data-entry"}
	if len(got) != len(want) {
		t.Fatalf("courses = %v, want %v (unknowns and duplicates dropped, capped at %d)",
			got, want, recommend.MaxRecommendations)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("courses[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecommendCourses_ProviderErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    errors.ErrorType
	}{
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			errors.ErrTypeUnavailable,
		},
		{
			"no choices",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
			},
			errors.ErrTypeInternal,
		},
		{
			"non-JSON reply",
			func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatReply("I recommend the executive assistant course."))
			},
			errors.ErrTypeInternal,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			r := newRecommender(testConfig(srv.URL))
			_, err := r.RecommendCourses(context.Background(), fullJob())
			if err == nil {
				t.Fatal("RecommendCourses succeeded, want hard error")
			}
			if errors.TypeOf(err) != tc.want {
				t.Errorf("error type = %v, want %v", errors.TypeOf(err), tc.want)
			}
		})
	}
}

package source_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/cache/memory"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/source"

	"go.uber.org/zap"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		PageSize:        20,
		SourceTimeout:   5 * time.Second,
		AdzunaAppID:     "app-id",
		AdzunaAppKey:    "app-key",
		AdzunaBaseURL:   baseURL,
		FindWorkAPIKey:  "fw-key",
		FindWorkBaseURL: baseURL,
		JoobleAPIKey:    "jooble-key",
		JoobleBaseURL:   baseURL,
		ReedAPIKey:      "reed-key",
		ReedBaseURL:     baseURL,
		MuseBaseURL:     baseURL,
	}
}

func newAdzuna(cfg *config.Config) *source.AdzunaAdapter {
	return source.NewAdzuna(cfg, zap.NewNop(), memory.New(time.Minute))
}

// ── Adzuna ─────────────────────────────────────────────────────────────────

func TestAdzunaFetch_RequestShape(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"results": []map[string]interface{}{
				{"id": "1", "title": "DevOps Engineer"},
			},
		})
	}))
	defer srv.Close()

	adapter := newAdzuna(testConfig(srv.URL))
	raws, err := adapter.Fetch(context.Background(), models.SearchFilters{
		Keywords:     "devops",
		Country:      "ng",
		Page:         2,
		ContractTime: "full_time",
		ContractType: "contract",
		SalaryMin:    50000,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("Fetch returned %d raws, want 1", len(raws))
	}

	if gotPath != "/jobs/ng/search/2" {
		t.Errorf("path = %q, want /jobs/ng/search/2 (country and page live in the path)", gotPath)
	}
	wantParams := map[string]string{
		"app_id":           "app-id",
		"app_key":          "app-key",
		"results_per_page": "20",
		"what":             "devops",
		"full_time":        "1",
		"contract":         "1",
		"salary_min":       "50000",
	}
	for key, want := range wantParams {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query[%s] = %v, want %q", key, got, want)
		}
	}
	if _, ok := gotQuery["part_time"]; ok {
		t.Error("part_time flag set for a full_time query")
	}
}

func TestAdzunaFetch_DefaultsCountryAndPage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []map[string]interface{}{}})
	}))
	defer srv.Close()

	adapter := newAdzuna(testConfig(srv.URL))
	if _, err := adapter.Fetch(context.Background(), models.SearchFilters{}); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if gotPath != "/jobs/gb/search/1" {
		t.Errorf("path = %q, want /jobs/gb/search/1", gotPath)
	}
}

func TestAdzunaFetch_MissingCredentials(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AdzunaAppKey = ""
	adapter := newAdzuna(cfg)

	_, err := adapter.Fetch(context.Background(), models.SearchFilters{})
	if err == nil {
		t.Fatal("Fetch succeeded without credentials")
	}
	if errors.TypeOf(err) != errors.ErrTypeInvalidInput {
		t.Errorf("error type = %v, want INVALID_INPUT", errors.TypeOf(err))
	}
	if calls != 0 {
		t.Errorf("server received %d requests, want 0", calls)
	}
}

func TestAdzunaFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := newAdzuna(testConfig(srv.URL))
	_, err := adapter.Fetch(context.Background(), models.SearchFilters{})
	if err == nil {
		t.Fatal("Fetch succeeded on a 500 response")
	}
	if errors.TypeOf(err) != errors.ErrTypeUnavailable {
		t.Errorf("error type = %v, want UNAVAILABLE", errors.TypeOf(err))
	}
}

func TestAdzunaCategories_Cached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"tag": "it-jobs", "label": "IT Jobs"},
			},
		})
	}))
	defer srv.Close()

	adapter := newAdzuna(testConfig(srv.URL))

	first, err := adapter.Categories(context.Background(), "gb")
	if err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	second, err := adapter.Categories(context.Background(), "gb")
	if err != nil {
		t.Fatalf("second Categories returned error: %v", err)
	}

	if calls != 1 {
		t.Errorf("server received %d requests, want 1 (second call served from cache)", calls)
	}
	if len(first) != 1 || first[0].Tag != "it-jobs" {
		t.Errorf("first = %+v, want the it-jobs category", first)
	}
	if len(second) != 1 || second[0].Tag != first[0].Tag {
		t.Errorf("cached result %+v differs from original %+v", second, first)
	}
}

// ── Reed ───────────────────────────────────────────────────────────────────

func TestReedFetch_AuthAndPagination(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"totalResults": 1,
			"results": []map[string]interface{}{
				{"jobId": 42, "jobTitle": "Bookkeeper"},
			},
		})
	}))
	defer srv.Close()

	adapter := source.NewReed(testConfig(srv.URL), zap.NewNop())
	raws, err := adapter.Fetch(context.Background(), models.SearchFilters{
		Keywords: "bookkeeping",
		Page:     3,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("Fetch returned %d raws, want 1", len(raws))
	}

	if !gotOK || gotUser != "reed-key" || gotPass != "" {
		t.Errorf("basic auth = (%q, %q, %v), want key as user with empty password", gotUser, gotPass, gotOK)
	}
	if got := gotQuery["resultsToTake"]; len(got) != 1 || got[0] != "20" {
		t.Errorf("resultsToTake = %v, want 20", got)
	}
	if got := gotQuery["resultsToSkip"]; len(got) != 1 || got[0] != "40" {
		t.Errorf("resultsToSkip = %v, want 40 for page 3", got)
	}
	if got := gotQuery["keywords"]; len(got) != 1 || got[0] != "bookkeeping" {
		t.Errorf("keywords = %v, want bookkeeping", got)
	}
}

func TestReedFetch_MissingCredentials(t *testing.T) {
	cfg := testConfig("http://unreachable.invalid")
	cfg.ReedAPIKey = ""
	adapter := source.NewReed(cfg, zap.NewNop())

	_, err := adapter.Fetch(context.Background(), models.SearchFilters{})
	if err == nil {
		t.Fatal("Fetch succeeded without credentials")
	}
	if errors.TypeOf(err) != errors.ErrTypeInvalidInput {
		t.Errorf("error type = %v, want INVALID_INPUT", errors.TypeOf(err))
	}
}

// ── FindWork ───────────────────────────────────────────────────────────────

func TestFindWorkFetch_TokenAuthAndRemote(t *testing.T) {
	var gotAuth string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"results": []map[string]interface{}{
				{"id": 7, "role": "Virtual Assistant", "remote": true},
			},
		})
	}))
	defer srv.Close()

	adapter := source.NewFindWork(testConfig(srv.URL), zap.NewNop())
	raws, err := adapter.Fetch(context.Background(), models.SearchFilters{
		Keywords: "assistant",
		IsRemote: true,
		Page:     2,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("Fetch returned %d raws, want 1", len(raws))
	}

	if gotAuth != "Token fw-key" {
		t.Errorf("Authorization = %q, want \"Token fw-key\"", gotAuth)
	}
	if got := gotQuery["remote"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("remote = %v, want true", got)
	}
	if got := gotQuery["search"]; len(got) != 1 || got[0] != "assistant" {
		t.Errorf("search = %v, want assistant", got)
	}
	if got := gotQuery["page"]; len(got) != 1 || got[0] != "2" {
		t.Errorf("page = %v, want 2", got)
	}
}

// ── Jooble ─────────────────────────────────────────────────────────────────

func TestJoobleFetch_PostBodyAndKeyPath(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody struct {
		Keywords string `json:"keywords"`
		Location string `json:"location"`
		Page     int    `json:"page"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"totalCount": 1,
			"jobs": []map[string]interface{}{
				{"id": 9, "title": "Data Entry Clerk"},
			},
		})
	}))
	defer srv.Close()

	adapter := source.NewJooble(testConfig(srv.URL), zap.NewNop())
	raws, err := adapter.Fetch(context.Background(), models.SearchFilters{
		Keywords: "data entry",
		Location: "Lagos",
		Page:     4,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("Fetch returned %d raws, want 1", len(raws))
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/jooble-key" {
		t.Errorf("path = %q, want the API key as the final segment", gotPath)
	}
	if gotBody.Keywords != "data entry" || gotBody.Location != "Lagos" || gotBody.Page != 4 {
		t.Errorf("body = %+v, want keywords/location/page echoed", gotBody)
	}
}

// ── The Muse ───────────────────────────────────────────────────────────────

func TestMuseFetch_KeywordPostFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"page":       1,
			"page_count": 1,
			"results": []map[string]interface{}{
				{"id": 1, "name": "Senior DevOps Engineer", "contents": "pipelines"},
				{"id": 2, "name": "Accountant", "contents": "ledgers"},
				{"id": 3, "name": "Designer", "contents": "some devops exposure helps"},
			},
		})
	}))
	defer srv.Close()

	adapter := source.NewMuse(testConfig(srv.URL), zap.NewNop())
	raws, err := adapter.Fetch(context.Background(), models.SearchFilters{Keywords: "DevOps"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("Fetch returned %d raws, want 2 matching title or body", len(raws))
	}
	for _, raw := range raws {
		job, ok := raw.(source.MuseJob)
		if !ok {
			t.Fatalf("raw is %T, want source.MuseJob", raw)
		}
		if job.ID == 2 {
			t.Error("non-matching listing survived the keyword filter")
		}
	}
}

func TestMuseFetch_RemoteLocation(t *testing.T) {
	var gotLocations []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocations = r.URL.Query()["location"]
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []map[string]interface{}{}})
	}))
	defer srv.Close()

	adapter := source.NewMuse(testConfig(srv.URL), zap.NewNop())
	if _, err := adapter.Fetch(context.Background(), models.SearchFilters{
		Location: "Lagos",
		IsRemote: true,
	}); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(gotLocations) != 2 || gotLocations[0] != "Lagos" || gotLocations[1] != "Flexible / Remote" {
		t.Errorf("location params = %v, want [Lagos, Flexible / Remote]", gotLocations)
	}
}

package geo

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/cache"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/normalize"

	"go.uber.org/zap"
)

// Locale is what geolocation feeds the presentation layer: which currency to
// display salaries in.
type Locale struct {
	CountryCode string `json:"country_code"`
	Currency    string `json:"currency"`
}

func (l Locale) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *Locale) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}

const cacheKeyPrefix = "geo:locale:"

type Locator struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
	cache  cache.Cache
}

func New(cfg *config.Config, logger *zap.Logger, c cache.Cache) *Locator {
	return &Locator{
		client: &http.Client{Timeout: cfg.SourceTimeout},
		logger: logger,
		config: cfg,
		cache:  c,
	}
}

// Locale looks up the country for the given client IP. The lookup runs
// server-side, so the client's address must be forwarded in; an empty ip
// makes the provider geolocate this process instead, which is only right in
// local development. Any failure falls back to the configured default
// currency; geolocation is display sugar, never an error.
func (l *Locator) Locale(ctx context.Context, ip string) Locale {
	key := cacheKeyPrefix + ip

	var cached Locale
	if err := l.cache.Get(ctx, key, &cached); err == nil {
		return cached
	}

	fallback := Locale{Currency: l.config.DefaultCurrency}

	endpoint := l.config.GeoBaseURL + "/json/"
	if ip != "" {
		endpoint = l.config.GeoBaseURL + "/" + ip + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		l.logger.Warn("creating geolocation request failed", zap.Error(err))
		return fallback
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("geolocation lookup failed", zap.Error(err))
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Warn("geolocation lookup returned non-OK status",
			zap.Int("status_code", resp.StatusCode))
		return fallback
	}

	var payload struct {
		CountryCode string `json:"country_code"`
		Currency    string `json:"currency"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		l.logger.Warn("decoding geolocation response failed", zap.Error(err))
		return fallback
	}

	locale := Locale{
		CountryCode: payload.CountryCode,
		Currency:    payload.Currency,
	}
	if locale.Currency == "" {
		locale.Currency = normalize.CurrencyForCountry(locale.CountryCode)
	}

	if err := l.cache.Set(ctx, key, locale, 0); err != nil {
		l.logger.Warn("failed to cache geolocation result", zap.Error(err))
	}

	return locale
}

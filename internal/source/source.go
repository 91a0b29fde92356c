package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/errors"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/models"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/source")

// Raw is the discriminated union over the per-provider raw record types.
// Adapters decode their API's native envelope into these and hand them over
// untouched; normalization picks the mapping by variant.
type Raw interface {
	Source() models.Source
}

// Adapter translates SearchFilters into one provider's request shape and its
// response into a sequence of raw records. Adapters never normalize and
// never swallow errors; failure isolation belongs to the aggregator.
type Adapter interface {
	Source() models.Source
	Fetch(ctx context.Context, filters models.SearchFilters) ([]Raw, error)
}

// decodeResponse checks the status code and decodes the body into out.
// Adapters share this because every provider in use speaks JSON over HTTP.
func decodeResponse(resp *http.Response, src models.Source, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Unavailable(fmt.Sprintf("%s returned status %d", src, resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Internal(fmt.Sprintf("decoding %s response", src), err)
	}

	return nil
}

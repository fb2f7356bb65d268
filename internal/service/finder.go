package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/scout/internal/apperr"
	"github.com/UnknownOlympus/scout/internal/geocoding"
	"github.com/UnknownOlympus/scout/internal/metrics"
	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/UnknownOlympus/scout/internal/repository"
	"github.com/google/uuid"
)

// BusinessSearcher finds businesses of a category around a point. Implementations
// never fail; they return an empty slice when nothing could be fetched.
type BusinessSearcher interface {
	Search(ctx context.Context, coords models.Coordinates, category string, limit int) []models.Business
}

// Finder ties the geocoder, the business searcher and the optional archive together
// for one run.
type Finder struct {
	log      *slog.Logger         // Logger for logging service activities
	provider geocoding.Provider   // Geocoding provider used to resolve the city
	searcher BusinessSearcher     // Feature search backend
	archive  repository.Interface // Optional archive of results, nil when disabled
	metrics  *metrics.Metrics     // Metrics for tracking service performance
	runID    uuid.UUID            // Identifies this run in the archive
	out      io.Writer            // User-facing console
	now      func() time.Time
}

// NewFinder creates a new instance of Finder. archive may be nil.
func NewFinder(
	log *slog.Logger,
	provider geocoding.Provider,
	searcher BusinessSearcher,
	archive repository.Interface,
	metrics *metrics.Metrics,
	runID uuid.UUID,
	out io.Writer,
) *Finder {
	return &Finder{
		log:      log,
		provider: provider,
		searcher: searcher,
		archive:  archive,
		metrics:  metrics,
		runID:    runID,
		out:      out,
		now:      time.Now,
	}
}

// Resolve geocodes city. Every failure, from an unknown place to a dropped connection,
// is reported to the user and the log, and comes back as found == false.
func (f *Finder) Resolve(ctx context.Context, city string) (models.Coordinates, bool) {
	start := f.now()
	coords, err := f.provider.Geocode(ctx, city)
	f.metrics.RequestSeconds.WithLabelValues("geocoder").Observe(f.now().Sub(start).Seconds())

	if err == nil {
		f.metrics.GeocodeRequests.WithLabelValues("found").Inc()
		f.log.InfoContext(ctx, "Found city", "city", city, "lat", coords.Latitude, "lon", coords.Longitude)
		fmt.Fprintf(f.out, "Found coordinates for %s: %v, %v\n", city, coords.Latitude, coords.Longitude)
		return *coords, true
	}

	if errors.Is(err, geocoding.ErrNotFound) {
		f.metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		f.log.WarnContext(ctx, "City not found", "city", city)
		fmt.Fprintf(f.out, "City '%s' not found\n", city)
		return models.Coordinates{}, false
	}

	kind := apperr.Classify(err)
	f.metrics.GeocodeRequests.WithLabelValues(kind.String()).Inc()

	switch kind {
	case apperr.KindTimeout:
		f.log.ErrorContext(ctx, "Timed out while searching for city", "city", city, "error", err)
		fmt.Fprintln(f.out, "Connection timed out. Please try again.")
	case apperr.KindConnectivity:
		f.log.ErrorContext(ctx, "No connection while searching for city", "city", city, "error", err)
		fmt.Fprintln(f.out, "No internet connection. Please check your network.")
	default:
		f.log.ErrorContext(ctx, "Error getting coordinates", "city", city, "kind", kind, "error", err)
		fmt.Fprintf(f.out, "Error getting coordinates: %v\n", err)
	}

	return models.Coordinates{}, false
}

// Search runs the business search and wraps the outcome into a result envelope
// stamped with the current UTC time.
func (f *Finder) Search(ctx context.Context, params models.SearchParams) models.SearchResult {
	businesses := f.searcher.Search(ctx, params.Coordinates, params.BusinessType, params.Limit)
	if businesses == nil {
		businesses = []models.Business{}
	}

	return models.SearchResult{
		Search:     params,
		CreatedAt:  f.now().UTC(),
		Businesses: businesses,
	}
}

// Archive stores result in the archive when one is configured. Failures are logged only.
func (f *Finder) Archive(ctx context.Context, result models.SearchResult) {
	if f.archive == nil {
		return
	}

	if err := f.archive.SaveSearch(ctx, f.runID, result); err != nil {
		f.metrics.ArchiveErrors.WithLabelValues("save").Inc()
		f.log.ErrorContext(ctx, "Failed to archive search result", "run_id", f.runID, "error", err)
		return
	}

	f.log.InfoContext(ctx, "Search result archived", "run_id", f.runID, "businesses", len(result.Businesses))
}

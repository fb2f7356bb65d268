package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/UnknownOlympus/scout/internal/geocoding"
	"github.com/UnknownOlympus/scout/internal/metrics"
	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/UnknownOlympus/scout/test/mocks"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 14, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

func newTestFinder(t *testing.T, archive bool) (*Finder, *mocks.Provider, *mocks.BusinessSearcher, *mocks.Interface, *metrics.Metrics, *bytes.Buffer) {
	t.Helper()
	provider := mocks.NewProvider(t)
	searcher := mocks.NewBusinessSearcher(t)
	repo := mocks.NewInterface(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	finder := NewFinder(logger, provider, searcher, nil, m, uuid.New(), out)
	if archive {
		finder.archive = repo
	}
	finder.now = func() time.Time { return fixedNow }

	return finder, provider, searcher, repo, m, out
}

func TestResolve(t *testing.T) {
	ctx := t.Context()

	t.Run("found", func(t *testing.T) {
		finder, provider, _, _, m, out := newTestFinder(t, false)
		provider.On("Geocode", ctx, "Paris").
			Return(&models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}, nil).Once()

		coords, found := finder.Resolve(ctx, "Paris")

		require.True(t, found)
		assert.Equal(t, models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}, coords)
		assert.Equal(t, "Found coordinates for Paris: 48.8566, 2.3522\n", out.String())
		assert.InDelta(t, 1, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("found")), 0)
	})

	tests := []struct {
		name    string
		err     error
		message string
		outcome string
	}{
		{
			name:    "not found",
			err:     geocoding.ErrNotFound,
			message: "City 'Nowhere' not found\n",
			outcome: "not_found",
		},
		{
			name:    "timeout",
			err:     fmt.Errorf("request: %w", &url.Error{Op: "Get", Err: context.DeadlineExceeded}),
			message: "Connection timed out. Please try again.\n",
			outcome: "timeout",
		},
		{
			name:    "connectivity",
			err:     &url.Error{Op: "Get", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			message: "No internet connection. Please check your network.\n",
			outcome: "connectivity",
		},
		{
			name:    "malformed coordinates",
			err:     fmt.Errorf("%w: invalid latitude: abc", geocoding.ErrInvalidCoords),
			message: "Error getting coordinates: geocoder returned invalid coordinates: invalid latitude: abc\n",
			outcome: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder, provider, _, _, m, out := newTestFinder(t, false)
			provider.On("Geocode", ctx, "Nowhere").Return(nil, tt.err).Once()

			coords, found := finder.Resolve(ctx, "Nowhere")

			assert.False(t, found)
			assert.Zero(t, coords)
			assert.Equal(t, tt.message, out.String())
			assert.InDelta(t, 1, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues(tt.outcome)), 0)
		})
	}
}

func TestSearch(t *testing.T) {
	ctx := t.Context()
	params := models.SearchParams{
		City:         "Paris",
		BusinessType: "cafe",
		Limit:        10,
		Coordinates:  models.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
	}

	t.Run("wraps businesses into envelope", func(t *testing.T) {
		finder, _, searcher, _, _, _ := newTestFinder(t, false)
		businesses := []models.Business{{Name: "Cafe A"}, {Name: "Cafe B"}}
		searcher.On("Search", ctx, params.Coordinates, "cafe", 10).Return(businesses).Once()

		result := finder.Search(ctx, params)

		assert.Equal(t, params, result.Search)
		assert.Equal(t, businesses, result.Businesses)
		assert.Equal(t, time.UTC, result.CreatedAt.Location())
		assert.True(t, fixedNow.Equal(result.CreatedAt))
	})

	t.Run("nil businesses become empty", func(t *testing.T) {
		finder, _, searcher, _, _, _ := newTestFinder(t, false)
		searcher.On("Search", ctx, params.Coordinates, "cafe", 10).Return(nil).Once()

		result := finder.Search(ctx, params)

		assert.NotNil(t, result.Businesses)
		assert.Empty(t, result.Businesses)
		assert.Equal(t, 10, result.Search.Limit)
	})
}

func TestArchive(t *testing.T) {
	ctx := t.Context()
	result := models.SearchResult{Search: models.SearchParams{City: "Paris"}}

	t.Run("disabled archive is a no-op", func(t *testing.T) {
		finder, _, _, repo, _, _ := newTestFinder(t, false)

		finder.Archive(ctx, result)

		repo.AssertNotCalled(t, "SaveSearch")
	})

	t.Run("saves with run id", func(t *testing.T) {
		finder, _, _, repo, _, _ := newTestFinder(t, true)
		repo.On("SaveSearch", ctx, finder.runID, result).Return(nil).Once()

		finder.Archive(ctx, result)
	})

	t.Run("archive error is swallowed", func(t *testing.T) {
		finder, _, _, repo, m, _ := newTestFinder(t, true)
		repo.On("SaveSearch", ctx, finder.runID, result).Return(assert.AnError).Once()

		assert.NotPanics(t, func() { finder.Archive(ctx, result) })
		assert.InDelta(t, 1, testutil.ToFloat64(m.ArchiveErrors.WithLabelValues("save")), 0)
	})
}

package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/scout/internal/apperr"
	"github.com/UnknownOlympus/scout/internal/models"
)

const maxErrorBody = 1 << 10

// Search returns up to limit businesses of the given category around coords, in
// upstream order. It never fails: once every attempt is spent it returns an empty slice.
func (c *Client) Search(ctx context.Context, coords models.Coordinates, category string, limit int) []models.Business {
	if limit < 1 {
		c.log.WarnContext(ctx, "Search skipped, limit must be positive", "limit", limit)
		return []models.Business{}
	}

	query := BuildQuery(QueryParams{
		Center:        coords,
		TagKey:        c.tagKey,
		TagValue:      category,
		RadiusMeters:  c.radius,
		Limit:         limit,
		ServerTimeout: c.serverTimeout,
	})

	c.log.InfoContext(ctx, "Searching for businesses",
		"business_type", category, "lat", coords.Latitude, "lon", coords.Longitude, "limit", limit)

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		fmt.Fprintf(c.out, "\nSearching... (attempt %d/%d)\n", attempt, c.maxRetries)

		elements, err := c.fetch(ctx, query)
		if err == nil {
			c.metrics.SearchAttempts.WithLabelValues("success").Inc()
			return c.collect(ctx, elements, category, limit)
		}

		last := attempt == c.maxRetries
		var backoff time.Duration

		var statusErr *apperr.StatusError
		switch {
		case apperr.Classify(err) == apperr.KindTimeout:
			c.metrics.SearchAttempts.WithLabelValues("timeout").Inc()
			c.log.WarnContext(ctx, "Search timed out", "attempt", attempt)
			fmt.Fprintln(c.out, "Search timed out. Retrying...")
			backoff = TimeoutBackoff
		case apperr.IsBusy(err):
			c.metrics.SearchAttempts.WithLabelValues("busy").Inc()
			c.log.WarnContext(ctx, "Server busy", "attempt", attempt, "error", err)
			fmt.Fprintln(c.out, "Server is busy. Retrying...")
			backoff = BusyBackoff
		case errors.As(err, &statusErr):
			c.metrics.SearchAttempts.WithLabelValues("http_error").Inc()
			c.log.ErrorContext(ctx, "HTTP error", "attempt", attempt, "error", err)
			fmt.Fprintf(c.out, "Server error: %v\n", err)
			if last {
				return []models.Business{}
			}
			backoff = ErrorBackoff
		default:
			c.metrics.SearchAttempts.WithLabelValues("error").Inc()
			c.log.ErrorContext(ctx, "Unexpected error", "attempt", attempt, "kind", apperr.Classify(err), "error", err)
			fmt.Fprintf(c.out, "Error: %v\n", err)
			if last {
				return []models.Business{}
			}
			backoff = ErrorBackoff
		}

		if last {
			break
		}
		if err = c.sleep(ctx, backoff); err != nil {
			c.log.WarnContext(ctx, "Search cancelled during backoff", "error", err)
			return []models.Business{}
		}
	}

	c.log.ErrorContext(ctx, "Failed to find businesses", "attempts", c.maxRetries)
	fmt.Fprintf(c.out, "Could not find businesses after %d attempts.\n", c.maxRetries)

	return []models.Business{}
}

func (c *Client) collect(ctx context.Context, elements []Element, category string, limit int) []models.Business {
	businesses, stats := Collect(elements, category, limit)

	c.metrics.BusinessesFound.Add(float64(stats.Accepted))
	c.metrics.SkippedFeatures.WithLabelValues(SkipNoName.String()).Add(float64(stats.NoName))
	c.metrics.SkippedFeatures.WithLabelValues(SkipNoCoords.String()).Add(float64(stats.NoCoords))
	c.metrics.SkippedFeatures.WithLabelValues(SkipUnsupported.String()).Add(float64(stats.Unsupported))

	c.log.InfoContext(ctx, "Found businesses", "business_type", category, "count", len(businesses))
	if stats.NoName > 0 {
		c.log.InfoContext(ctx, "Skipped places without names", "count", stats.NoName)
	}
	if stats.NoCoords > 0 {
		c.log.InfoContext(ctx, "Skipped places without coordinates", "count", stats.NoCoords)
	}
	fmt.Fprintf(c.out, "Found %d businesses\n", len(businesses))

	return businesses
}

// fetch performs a single attempt.
func (c *Client) fetch(ctx context.Context, query string) ([]Element, error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.RequestSeconds.WithLabelValues("overpass").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to execute overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &apperr.StatusError{Service: "overpass", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out response
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w: %w", apperr.ErrMalformed, err)
	}
	if out.Remark != "" {
		c.log.WarnContext(ctx, "Overpass remark", "remark", out.Remark)
	}

	return out.Elements, nil
}

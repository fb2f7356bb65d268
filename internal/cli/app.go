// Package cli drives an interactive search: it asks for a city, a category and a
// limit, then runs the search and persists the result.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/UnknownOlympus/scout/internal/models"
)

// ErrInputClosed is returned when stdin ends before all answers were given.
var ErrInputClosed = errors.New("input closed")

var separator = strings.Repeat("=", 50)

// Finder resolves cities and runs searches.
type Finder interface {
	Resolve(ctx context.Context, city string) (models.Coordinates, bool)
	Search(ctx context.Context, params models.SearchParams) models.SearchResult
	Archive(ctx context.Context, result models.SearchResult)
}

// ResultWriter persists a finished search.
type ResultWriter interface {
	WriteResult(result models.SearchResult) error
	AppendSummary(result models.SearchResult) error
	ResultPath() string
	LogPath() string
}

type line struct {
	text string
	err  error
}

// App is the interactive front end.
type App struct {
	finder Finder
	writer ResultWriter
	log    *slog.Logger
	in     *bufio.Scanner
	out    io.Writer

	lines      chan line
	readerOnce sync.Once
}

// NewApp creates an App reading answers from in and printing to out.
func NewApp(finder Finder, writer ResultWriter, log *slog.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		finder: finder,
		writer: writer,
		log:    log,
		in:     bufio.NewScanner(in),
		out:    out,
		lines:  make(chan line),
	}
}

// Run performs one complete search. It only fails when the input ends early or ctx
// is cancelled; upstream and file errors are reported and the run still completes.
func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "Program started")
	fmt.Fprintf(a.out, "\n%s\nBUSINESS FINDER\n%s\n", separator, separator)

	city, coords, err := a.askCity(ctx)
	if err != nil {
		return err
	}

	category, err := a.prompt(ctx, "\nWhat type of business? (e.g., restaurant, cafe, bank): ")
	if err != nil {
		return err
	}
	category = NormalizeCategory(category)
	a.log.InfoContext(ctx, "User searching for", "business_type", category)

	limit, err := a.askLimit(ctx, category)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s\nSearching for %ss in %s...\n%s\n", separator, category, city, separator)

	result := a.finder.Search(ctx, models.SearchParams{
		City:         city,
		BusinessType: category,
		Limit:        limit,
		Coordinates:  coords,
	})

	// An interrupted search must not replace the previous result file.
	if err = ctx.Err(); err != nil {
		a.log.WarnContext(ctx, "Search interrupted, nothing saved", "error", err)
		return err
	}

	a.persist(ctx, result)
	a.finder.Archive(ctx, result)

	fmt.Fprintf(a.out, "\n%s\nSearch complete! Check '%s' for details.\n%s\n", separator, a.writer.LogPath(), separator)
	a.log.InfoContext(ctx, "Program finished successfully")

	return nil
}

func (a *App) askCity(ctx context.Context) (string, models.Coordinates, error) {
	for {
		raw, err := a.prompt(ctx, "\nEnter city name: ")
		if err != nil {
			return "", models.Coordinates{}, err
		}

		city, err := ValidateCity(raw)
		if err != nil {
			fmt.Fprintln(a.out, retryMessage(err))
			continue
		}

		if coords, found := a.finder.Resolve(ctx, city); found {
			a.log.InfoContext(ctx, "User selected city", "city", city)
			return city, coords, nil
		}
		fmt.Fprintln(a.out, "City not found. Please try again.")
	}
}

func (a *App) askLimit(ctx context.Context, category string) (int, error) {
	question := fmt.Sprintf("\nHow many %ss to find? (%d-%d): ", category, MinLimit, MaxLimit)
	for {
		raw, err := a.prompt(ctx, question)
		if err != nil {
			return 0, err
		}

		limit, err := ParseLimit(raw)
		if err != nil {
			fmt.Fprintln(a.out, retryMessage(err))
			continue
		}

		a.log.InfoContext(ctx, "User requested results", "limit", limit)
		return limit, nil
	}
}

// persist writes the result file and, when that worked, the log summary. Failures are
// shown to the user and logged; they never abort the run.
func (a *App) persist(ctx context.Context, result models.SearchResult) {
	if err := a.writer.WriteResult(result); err != nil {
		a.log.ErrorContext(ctx, "Failed to save results", "error", err)
		fmt.Fprintf(a.out, "\n✗ Error saving file: %v\n", err)
		return
	}
	a.log.InfoContext(ctx, "Saved results", "file", a.writer.ResultPath())
	fmt.Fprintf(a.out, "\n✓ Results saved to: %s\n", a.writer.ResultPath())

	if err := a.writer.AppendSummary(result); err != nil {
		a.log.ErrorContext(ctx, "Failed to append summary", "error", err)
		fmt.Fprintf(a.out, "\n✗ Error saving file: %v\n", err)
	}
}

// prompt prints question and waits for the next input line or for ctx to end,
// whichever comes first.
func (a *App) prompt(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.readerOnce.Do(func() { go a.readLines() })

	fmt.Fprint(a.out, question)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-a.lines:
		if !ok {
			return "", ErrInputClosed
		}
		if l.err != nil {
			return "", fmt.Errorf("failed to read input: %w", l.err)
		}
		return l.text, nil
	}
}

// readLines feeds input lines to prompt. It blocks in the reader while no prompt is
// pending and closes the channel at end of input.
func (a *App) readLines() {
	defer close(a.lines)
	for a.in.Scan() {
		a.lines <- line{text: a.in.Text()}
	}
	if err := a.in.Err(); err != nil {
		a.lines <- line{err: err}
	}
}

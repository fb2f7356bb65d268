// Package output persists a search result: the JSON document that is overwritten on
// every run and the summary block appended to the run log.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/UnknownOlympus/scout/internal/apperr"
	"github.com/UnknownOlympus/scout/internal/models"
)

// Default file names in the working directory.
const (
	DefaultResultFile = "businesses.json"
	DefaultLogFile    = "business_search.log"
)

// Writer writes results and summaries to fixed paths.
type Writer struct {
	resultPath string
	logPath    string
}

// NewWriter returns a Writer for the given result and log paths.
func NewWriter(resultPath, logPath string) *Writer {
	if resultPath == "" {
		resultPath = DefaultResultFile
	}
	if logPath == "" {
		logPath = DefaultLogFile
	}

	return &Writer{resultPath: resultPath, logPath: logPath}
}

// ResultPath returns the path of the JSON result file.
func (w *Writer) ResultPath() string { return w.resultPath }

// LogPath returns the path of the log file that receives summaries.
func (w *Writer) LogPath() string { return w.logPath }

// WriteResult replaces the result file with result as indented UTF-8 JSON.
func (w *Writer) WriteResult(result models.SearchResult) (err error) {
	if result.Businesses == nil {
		result.Businesses = []models.Business{}
	}

	file, err := os.Create(w.resultPath)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", apperr.ErrLocalIO, w.resultPath, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close %s: %w", apperr.ErrLocalIO, w.resultPath, cerr)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err = enc.Encode(result); err != nil {
		return fmt.Errorf("%w: failed to encode result: %w", apperr.ErrLocalIO, err)
	}

	return nil
}

// AppendSummary appends a human-readable block listing the saved businesses to the log file.
func (w *Writer) AppendSummary(result models.SearchResult) (err error) {
	file, err := os.OpenFile(w.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %w", apperr.ErrLocalIO, w.logPath, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close %s: %w", apperr.ErrLocalIO, w.logPath, cerr)
		}
	}()

	buf := bufio.NewWriter(file)
	fmt.Fprintf(buf, "\nResults saved to: %s\n", w.resultPath)
	fmt.Fprintf(buf, "Found %d businesses in %s\n", len(result.Businesses), result.Search.City)
	if len(result.Businesses) > 0 {
		buf.WriteString("Businesses found:\n")
		for _, name := range result.Names() {
			fmt.Fprintf(buf, "  - %s\n", name)
		}
	}

	if err = buf.Flush(); err != nil {
		return fmt.Errorf("%w: failed to write summary: %w", apperr.ErrLocalIO, err)
	}

	return nil
}

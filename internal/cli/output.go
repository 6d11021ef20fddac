package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"appcatalog/internal/indexer"
	"appcatalog/internal/service"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query failed or found nothing
	ExitCommandError = 2 // Command error (bad configuration, store unavailable, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope for CLI output.
type CLIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// Success writes data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

func writeListings(w io.Writer, listings []service.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No applications found.")
		return
	}
	for _, l := range listings {
		fmt.Fprintf(w, "%s (%s)\n", l.Name, service.DisplaySource(l.SourceType))
		fmt.Fprintf(w, "  id: %s  install: %s\n", l.ID, l.InstallRef)
		if l.Summary != "" {
			fmt.Fprintf(w, "  %s\n", l.Summary)
		}
	}
}

func writeStats(w io.Writer, stats indexer.Stats) {
	if !stats.Ran {
		fmt.Fprintln(w, "Catalog already populated; nothing ingested.")
		return
	}
	for _, s := range stats.Sources {
		switch {
		case s.Unavailable:
			fmt.Fprintf(w, "%-16s unavailable\n", s.Source)
		case s.Error != "":
			fmt.Fprintf(w, "%-16s stopped after %d records: %s\n", s.Source, s.Ingested, s.Error)
		default:
			fmt.Fprintf(w, "%-16s %d ingested, %d skipped, %d malformed (%s)\n",
				s.Source, s.Ingested, s.Skipped, s.Malformed, s.Duration.Round(1e6))
		}
	}
	fmt.Fprintf(w, "Total: %d\n", stats.Ingested())
}

func writeDetail(w io.Writer, d service.AppDetail) {
	a := d.App
	fmt.Fprintf(w, "%s (%s)\n", a.Name, d.DisplaySource)
	fmt.Fprintf(w, "%s\n\n", a.Summary)
	fmt.Fprintf(w, "ID:         %s\n", a.ID)
	fmt.Fprintf(w, "Install:    %s\n", a.InstallRef)
	fmt.Fprintf(w, "Developer:  %s\n", a.Developer)
	fmt.Fprintf(w, "License:    %s\n", a.License)
	fmt.Fprintf(w, "Homepage:   %s\n", a.Homepage)
	fmt.Fprintf(w, "Categories: %s\n", strings.Join(a.Categories, ", "))
	fmt.Fprintf(w, "Icon:       %s\n", iconText(d.ResolvedIcon.Kind.String(), d.ResolvedIcon.Path))
	if len(a.Screenshots) > 0 {
		fmt.Fprintf(w, "Screenshots:\n")
		for _, s := range a.Screenshots {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	if d.DescriptionText != "" {
		fmt.Fprintf(w, "\n%s\n", d.DescriptionText)
	}
}

func iconText(kind, path string) string {
	if path == "" {
		return kind
	}
	return fmt.Sprintf("%s %s", kind, path)
}

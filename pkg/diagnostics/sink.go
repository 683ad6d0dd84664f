// Package diagnostics accumulates non-fatal compiler errors so that a pass can
// keep going and the driver can decide afterwards whether to stop.
package diagnostics

import (
	"fmt"
	"strings"
	"sync"
)

// Severity captures diagnostic levels.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single recorded problem. Definition is empty for
// program-level diagnostics.
type Diagnostic struct {
	Severity   Severity
	Definition string
	Err        error
}

// Message returns the user-facing text of the diagnostic.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// Sink is an append-only diagnostics log shared by the passes of one
// compilation. It is safe for concurrent appends.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) add(d Diagnostic) {
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Error records a program-level error.
func (s *Sink) Error(err error) {
	s.add(Diagnostic{Severity: SeverityError, Err: err})
}

// DefinitionError records an error attributed to a definition.
func (s *Sink) DefinitionError(def string, err error) {
	s.add(Diagnostic{Severity: SeverityError, Definition: def, Err: err})
}

// Warning records a program-level warning.
func (s *Sink) Warning(err error) {
	s.add(Diagnostic{Severity: SeverityWarning, Err: err})
}

// Diagnostics returns a copy of the recorded diagnostics in append order.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many diagnostics were recorded.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Errors returns the underlying errors of error-severity diagnostics.
func (s *Sink) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []error
	for _, d := range s.items {
		if d.Severity == SeverityError {
			out = append(out, d.Err)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Fatal returns a *Report listing every diagnostic when at least one error was
// recorded, nil otherwise.
func (s *Sink) Fatal() error {
	if !s.HasErrors() {
		return nil
	}
	return &Report{Diagnostics: s.Diagnostics()}
}

// Report aggregates diagnostics into a single error for callers that need to
// stop the pipeline.
type Report struct {
	Diagnostics []Diagnostic
}

func (r *Report) Error() string {
	if len(r.Diagnostics) == 0 {
		return "compilation failed"
	}
	var b strings.Builder
	b.WriteString("compilation failed:")
	for _, d := range r.Diagnostics {
		b.WriteString("\n- ")
		b.WriteString(Describe(d))
	}
	return b.String()
}

// Describe formats a diagnostic for CLI output.
func Describe(d Diagnostic) string {
	prefix := "error: "
	if d.Severity == SeverityWarning {
		prefix = "warning: "
	}
	message := strings.TrimSpace(d.Message())
	if d.Definition != "" {
		return fmt.Sprintf("%sIn definition '%s': %s", prefix, d.Definition, message)
	}
	return prefix + message
}

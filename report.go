package pagetlai

import (
	"fmt"
	"strings"
)

// Report aggregates the outcomes of one run, across the whole recursive
// walk (and across pages in batch mode).
type Report struct {
	translated int
	labels     []string
	seenLabels map[string]bool
	errors     []string
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{seenLabels: make(map[string]bool)}
}

// Add records field outcomes.
func (r *Report) Add(outcomes ...TranslationOutcome) {
	for _, o := range outcomes {
		r.errors = append(r.errors, o.Errors...)
		if o.TranslatedCount == 0 {
			continue
		}
		r.translated += o.TranslatedCount
		if !r.seenLabels[o.Label] {
			r.seenLabels[o.Label] = true
			r.labels = append(r.labels, o.Label)
		}
	}
}

// AddError records a run-level error such as a glossary provisioning failure.
func (r *Report) AddError(err error) {
	if err == nil {
		return
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			r.errors = append(r.errors, line)
		}
	}
}

// Merge adds the contents of other to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.translated += other.translated
	for _, label := range other.labels {
		if !r.seenLabels[label] {
			r.seenLabels[label] = true
			r.labels = append(r.labels, label)
		}
	}
	r.errors = append(r.errors, other.errors...)
}

// TranslatedCount returns the number of fields translated.
func (r *Report) TranslatedCount() int {
	return r.translated
}

// Labels returns the distinct labels of translated fields in visit order.
func (r *Report) Labels() []string {
	return append([]string(nil), r.labels...)
}

// Errors returns every recorded error message.
func (r *Report) Errors() []string {
	return append([]string(nil), r.errors...)
}

// HasErrors reports whether any error was recorded.
func (r *Report) HasErrors() bool {
	return len(r.errors) > 0
}

// Summary renders the success message, e.g. "Title, Body translated".
func (r *Report) Summary() string {
	if len(r.labels) == 0 {
		return "No fields translated"
	}
	return strings.Join(r.labels, ", ") + " translated"
}

// ErrorSummary renders the distinct error messages, or "" without errors.
func (r *Report) ErrorSummary() string {
	if len(r.errors) == 0 {
		return ""
	}
	seen := make(map[string]bool)
	var distinct []string
	for _, msg := range r.errors {
		if !seen[msg] {
			seen[msg] = true
			distinct = append(distinct, msg)
		}
	}
	return "Translation errors: " + strings.Join(distinct, "; ")
}

// PageLogLine renders the batch log line of a page.
func PageLogLine(page Page, processed bool) string {
	verb := "Process"
	if !processed {
		verb = "Ignore"
	}
	return fmt.Sprintf("%s page %s (%s)", verb, page.Title(), page.ID())
}

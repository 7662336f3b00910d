package document

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarning does not stop compilation.
	SeverityWarning Severity = iota
	// SeverityError fails compilation.
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a message produced while compiling. Line is 1-based and
// zero when unknown.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

// String formats the diagnostic as "file:line: severity: message".
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
		}
		b.WriteString(": ")
	}
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// CompileError is returned when a document fails to compile. It carries
// every diagnostic produced, errors and warnings alike.
type CompileError struct {
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	var errs []string
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d.String())
		}
	}
	switch len(errs) {
	case 0:
		return "document: compilation failed"
	case 1:
		return "document: " + errs[0]
	default:
		return fmt.Sprintf("document: %s (and %d more errors)", errs[0], len(errs)-1)
	}
}

// diagnostics collects messages for one compilation.
type diagnostics struct {
	list   []Diagnostic
	failed bool
}

func (d *diagnostics) errorf(file string, line int, format string, args ...any) {
	d.failed = true
	d.list = append(d.list, Diagnostic{SeverityError, file, line, fmt.Sprintf(format, args...)})
}

func (d *diagnostics) warnf(file string, line int, format string, args ...any) {
	d.list = append(d.list, Diagnostic{SeverityWarning, file, line, fmt.Sprintf(format, args...)})
}

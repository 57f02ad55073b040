package report

import (
	"errors"
	"sync"
)

// Sink receives the findings accepted by a Reporter.
type Sink interface {
	Accept(f Finding)
}

// Flusher is implemented by sinks that write their output at the end of a
// run instead of finding by finding.
type Flusher interface {
	Flush() error
}

// Resetter is implemented by sinks holding state that must not carry over
// from one run to the next.
type Resetter interface {
	Reset()
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithErrorOnly drops every finding whose severity is not error.
func WithErrorOnly(on bool) Option {
	return func(r *Reporter) { r.errorOnly = on }
}

// WithDedup suppresses a finding identical to one already reported for the
// same file.
func WithDedup(on bool) Option {
	return func(r *Reporter) { r.dedup = on }
}

type fileKey struct {
	baseDir  string
	fileName string
}

type dupKey struct {
	line     int
	severity Severity
	category string
	message  string
}

// Reporter counts, filters and forwards findings to its Sink.
//
// A Reporter is created once per batch run and is safe for concurrent use;
// every write is serialised. Grouping in the console sink still depends on
// findings of one file arriving together, which the batch driver ensures.
type Reporter struct {
	mu        sync.Mutex
	sink      Sink
	callCount int
	errorOnly bool
	dedup     bool
	seen      map[fileKey]map[dupKey]struct{}
}

// New returns a Reporter delivering to sink.
func New(sink Sink, opts ...Option) *Reporter {
	r := &Reporter{
		sink: sink,
		seen: make(map[fileKey]map[dupKey]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sink returns the sink chosen at construction.
func (r *Reporter) Sink() Sink {
	return r.sink
}

// Report accepts f unless it is filtered out or a duplicate.
func (r *Reporter) Report(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.errorOnly && !f.Severity.IsError() {
		return
	}
	if r.dedup {
		fk := fileKey{baseDir: f.BaseDir, fileName: f.FileName}
		dk := dupKey{line: f.Line, severity: f.Severity, category: f.Category, message: f.Message}
		seen, ok := r.seen[fk]
		if !ok {
			seen = make(map[dupKey]struct{})
			r.seen[fk] = seen
		}
		if _, dup := seen[dk]; dup {
			return
		}
		seen[dk] = struct{}{}
	}
	r.callCount++
	if r.sink != nil {
		r.sink.Accept(f)
	}
}

// Emit is Report with the finding spelled out field by field.
func (r *Reporter) Emit(line int, message string, severity Severity, baseDir, fileName, category string) {
	r.Report(Finding{
		Line:     line,
		Message:  message,
		Severity: severity,
		BaseDir:  baseDir,
		FileName: fileName,
		Category: category,
	})
}

// CallCount returns the number of findings accepted since the last Reset.
func (r *Reporter) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callCount
}

// Reset zeroes the count, forgets the findings seen for duplicate
// suppression and resets the sink. It is called at the start of every run.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callCount = 0
	r.seen = make(map[fileKey]map[dupKey]struct{})
	if s, ok := r.sink.(Resetter); ok {
		s.Reset()
	}
}

// SetErrorOnly toggles the error-only filter.
func (r *Reporter) SetErrorOnly(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorOnly = on
}

// ErrorOnly reports whether non-error findings are dropped.
func (r *Reporter) ErrorOnly() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorOnly
}

// Flush flushes the sink when it buffers its output.
func (r *Reporter) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.sink.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Multi fans findings out to several sinks.
type Multi []Sink

// Accept forwards f to every sink.
func (m Multi) Accept(f Finding) {
	for _, s := range m {
		s.Accept(f)
	}
}

// Reset resets every sink that keeps state between runs.
func (m Multi) Reset() {
	for _, s := range m {
		if rs, ok := s.(Resetter); ok {
			rs.Reset()
		}
	}
}

// Flush flushes every sink that buffers, joining the errors.
func (m Multi) Flush() error {
	var errs []error
	for _, s := range m {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

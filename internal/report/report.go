// Package report holds the in-memory run log the emailed report is built
// from. One sink belongs to exactly one run and is not safe for concurrent
// use.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Record is one captured log line.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// Sink is an append-only sequence of records. After Close, appends are
// dropped silently; Text stays readable so the final report is never lost to
// ordering mistakes around dispatch.
type Sink struct {
	name    string
	records []Record
	closed  bool
	now     func() time.Time
}

func New(name string) *Sink {
	return &Sink{name: name, now: time.Now}
}

func (s *Sink) Info(format string, args ...any)  { s.append(slog.LevelInfo, format, args...) }
func (s *Sink) Warn(format string, args ...any)  { s.append(slog.LevelWarn, format, args...) }
func (s *Sink) Error(format string, args ...any) { s.append(slog.LevelError, format, args...) }

func (s *Sink) append(level slog.Level, format string, args ...any) {
	if s.closed {
		return
	}
	s.records = append(s.records, Record{
		Time:    s.now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Records returns the captured records in append order.
func (s *Sink) Records() []Record {
	return s.records
}

func (s *Sink) Len() int {
	return len(s.records)
}

// Text materializes the full report body.
func (s *Sink) Text() string {
	var b strings.Builder
	for _, r := range s.records {
		fmt.Fprintf(&b, "%s %-15s %-8s %s\n",
			r.Time.Format("2006-01-02 15:04:05"), s.name, r.Level, r.Message)
	}
	return b.String()
}

func (s *Sink) Close() {
	s.closed = true
}

func (s *Sink) Closed() bool {
	return s.closed
}

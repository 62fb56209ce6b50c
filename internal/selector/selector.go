// Package selector resolves a technology's path pattern to the files that
// fall inside its retention window.
package selector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"s3backup/internal/models"
)

var (
	ErrNotAbsolute  = errors.New("pattern directory is not absolute")
	ErrEmptyPattern = errors.New("pattern has no file component")
)

// Selection is the result of resolving one technology's pattern.
type Selection struct {
	Dir     string
	Matched int           // regular files matching the glob, before the age filter
	Files   []models.File // matches inside the retention window, in glob order
}

// Select splits entry's pattern into directory and glob, validates it, and
// keeps files whose modification date is at most the effective window (in
// whole days) before the run date. Ages are compared on dates, not clock
// times.
func Select(entry models.TechnologyEntry, run models.RunContext) (Selection, error) {
	dir, glob := filepath.Split(entry.Pattern)
	if glob == "" {
		return Selection{}, fmt.Errorf("%w: %s", ErrEmptyPattern, entry.Pattern)
	}
	dir = filepath.Clean(dir)
	if !filepath.IsAbs(dir) {
		return Selection{}, fmt.Errorf("%w: %s", ErrNotAbsolute, dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return Selection{}, fmt.Errorf("bad pattern %s: %w", entry.Pattern, err)
	}

	window := entry.EffectiveWindow(run.DefaultWindowDays)
	sel := Selection{Dir: dir}
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		sel.Matched++
		if ageDays(run.RunDate, info.ModTime()) <= window {
			sel.Files = append(sel.Files, models.File{
				Path:    path,
				Name:    filepath.Base(path),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}
	return sel, nil
}

// ageDays is the whole-day difference between the run date and the file's
// modification date, both truncated to midnight. A future-dated file yields
// a negative age and is always inside the window.
func ageDays(runDate, mtime time.Time) int {
	return int(truncateToDate(runDate).Sub(truncateToDate(mtime)).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

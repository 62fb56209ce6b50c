package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"s3backup/config"
	"s3backup/internal/models"
	"s3backup/internal/report"
	"s3backup/internal/s3client"
	"s3backup/internal/selector"
	"s3backup/internal/transfer"
)

// Storage is the object-storage capability the orchestrator needs.
type Storage interface {
	transfer.Uploader
	CheckBucket(ctx context.Context, bucket string) (s3client.BucketStatus, error)
}

type Orchestrator struct {
	store   Storage
	engine  *transfer.Engine
	sink    *report.Sink
	run     models.RunContext
	entries []config.RawTechnology
}

func New(store Storage, engine *transfer.Engine, sink *report.Sink, run models.RunContext, entries []config.RawTechnology) *Orchestrator {
	return &Orchestrator{
		store:   store,
		engine:  engine,
		sink:    sink,
		run:     run,
		entries: entries,
	}
}

// Run performs the whole backup phase and returns the run totals. Every
// failure is downgraded to a logged outcome; the caller always gets to
// dispatch the report afterwards.
func (o *Orchestrator) Run(ctx context.Context) models.RunTotals {
	var totals models.RunTotals

	status, err := o.store.CheckBucket(ctx, o.run.Bucket)
	switch status {
	case s3client.BucketUnreachable:
		o.sink.Error("%v for bucket %s", err, o.run.Bucket)
		return totals
	case s3client.BucketForbidden:
		o.sink.Error("Private bucket %s. Forbidden access!", o.run.Bucket)
		return totals
	case s3client.BucketNotFound:
		o.sink.Error("Bucket %s does not exist!", o.run.Bucket)
		return totals
	}

	if len(o.entries) == 0 {
		o.sink.Error("No technologies specified for backup")
		return totals
	}

	totals.TechnologiesTotal = len(o.entries)
	for _, raw := range o.entries {
		o.processTechnology(ctx, raw, &totals)
	}

	o.sink.Info("Total technologies: %d", totals.TechnologiesTotal)
	o.sink.Info("Successfully uploaded technologies: %d", totals.TechnologiesFullySuccessful)
	if shortfall := totals.TechnologiesTotal - totals.TechnologiesFullySuccessful; shortfall > 0 {
		o.sink.Warn("Issues in %d technologies", shortfall)
	} else {
		o.sink.Info("Issues in 0 technologies")
	}

	return totals
}

func (o *Orchestrator) processTechnology(ctx context.Context, raw config.RawTechnology, totals *models.RunTotals) {
	entry, err := models.ParseTechnology(raw.Pattern, raw.Value)
	if err != nil {
		o.sink.Error("%v", err)
		return
	}

	sel, err := selector.Select(entry, o.run)
	if err != nil {
		switch {
		case errors.Is(err, selector.ErrNotAbsolute):
			o.sink.Error("Incorrect absolute path %s for %s", entry.Pattern, entry.Name)
		case errors.Is(err, selector.ErrEmptyPattern):
			o.sink.Error("No file pattern found in %s for %s files", entry.Pattern, entry.Name)
		default:
			o.sink.Error("%v", err)
		}
		return
	}

	o.sink.Info("Starting backup from %s for %s", sel.Dir, entry.Name)

	if sel.Matched == 0 {
		o.sink.Warn("No files found from %s for %s", sel.Dir, entry.Name)
		return
	}

	outcome := o.engine.Run(ctx, entry, sel.Files, o.run, o.sink)
	totals.BytesUploaded += outcome.BytesUploaded
	level, success, msg := Classify(outcome, entry.Policy, sel.Dir)
	o.log(level, msg)
	if success {
		totals.TechnologiesFullySuccessful++
	}
}

// Classify turns one technology's counters into its report line. It is a
// pure function of its inputs: the same outcome always yields the same level
// and the same success decision.
func Classify(o models.TechnologyOutcome, policy models.Policy, dir string) (slog.Level, bool, string) {
	if o.FilesUploadFailed > 0 {
		if policy == models.PolicyDelete {
			return slog.LevelWarn, false, fmt.Sprintf(
				"For %s: successful uploading of %d files, unsuccessful uploading of %d files, undeletable files %d",
				o.Name, o.FilesUploaded, o.FilesUploadFailed, o.FilesDeleteFailed)
		}
		return slog.LevelWarn, false, fmt.Sprintf(
			`For %s: successful uploading of %d files, unsuccessful uploading of %d files, delete_option="keep"`,
			o.Name, o.FilesUploaded, o.FilesUploadFailed)
	}

	if o.FilesUploaded == 0 {
		return slog.LevelWarn, false, fmt.Sprintf(
			"No files found with given modification interval from %s for %s", dir, o.Name)
	}

	if o.FilesDeleteFailed > 0 {
		return slog.LevelWarn, false, fmt.Sprintf(
			"Successfully uploaded %d files from %s for %s but error in deleting %d files",
			o.FilesUploaded, dir, o.Name, o.FilesDeleteFailed)
	}

	if policy == models.PolicyDelete {
		return slog.LevelInfo, true, fmt.Sprintf(
			"Successfully uploaded %d files from %s for %s. Successfully deleted %d files",
			o.FilesUploaded, dir, o.Name, o.FilesDeleted)
	}
	return slog.LevelInfo, true, fmt.Sprintf(
		`Successfully uploaded %d files from %s for %s. delete_option="keep"`,
		o.FilesUploaded, dir, o.Name)
}

func (o *Orchestrator) log(level slog.Level, msg string) {
	switch level {
	case slog.LevelWarn:
		o.sink.Warn("%s", msg)
	case slog.LevelError:
		o.sink.Error("%s", msg)
	default:
		o.sink.Info("%s", msg)
	}
}

package transfer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"s3backup/internal/models"
	"s3backup/internal/report"
	"s3backup/internal/s3client"
)

// Uploader is the storage capability the engine needs.
type Uploader interface {
	Upload(ctx context.Context, localPath, bucket, key string) error
}

// Engine uploads candidate files one at a time, optionally deleting the
// originals. Files are never processed concurrently; the fixed pause between
// files throttles the network path.
type Engine struct {
	store  Uploader
	remove func(string) error
	pause  func(time.Duration)
}

func New(store Uploader) *Engine {
	return &Engine{
		store:  store,
		remove: os.Remove,
		pause:  time.Sleep,
	}
}

// Run attempts every candidate file in order. A file is deleted only after
// its upload succeeded, and a failed delete is never counted as a failed
// upload. The pause follows every attempted file, failures included.
func (e *Engine) Run(ctx context.Context, entry models.TechnologyEntry, files []models.File, run models.RunContext, sink *report.Sink) models.TechnologyOutcome {
	outcome := models.TechnologyOutcome{Name: entry.Name}

	for _, f := range files {
		key := s3client.ObjectKey(run.Site, entry.Name, run.Hostname, f.ModTime, f.Name)
		if err := e.store.Upload(ctx, f.Path, run.Bucket, key); err != nil {
			outcome.FilesUploadFailed++
			sink.Error("An error occurred while trying to upload %s: %v", f.Name, err)
		} else {
			outcome.FilesUploaded++
			outcome.BytesUploaded += f.Size
			if entry.Policy == models.PolicyDelete {
				e.deleteLocal(f, &outcome, sink)
			}
		}
		e.pause(run.InterUploadDelay)
	}

	return outcome
}

func (e *Engine) deleteLocal(f models.File, outcome *models.TechnologyOutcome, sink *report.Sink) {
	err := e.remove(f.Path)
	switch {
	case err == nil:
		outcome.FilesDeleted++
	case errors.Is(err, fs.ErrPermission):
		outcome.FilesDeleteFailed++
		sink.Error("Permission denied for deleting %s. Delete it manually", f.Path)
	default:
		outcome.FilesDeleteFailed++
		sink.Error("Failed to delete %s: %v", f.Path, err)
	}
}

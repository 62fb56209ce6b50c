package models

import "time"

// RunContext carries the immutable parameters of one backup invocation.
type RunContext struct {
	RunDate           time.Time
	Site              string
	Hostname          string
	Bucket            string
	DefaultWindowDays int
	InterUploadDelay  time.Duration
}

// File is one backup candidate on the local filesystem.
type File struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// TechnologyOutcome tallies one technology's per-file transfer results.
// FilesDeleted is tracked explicitly so the report never infers deletions
// from the upload count.
type TechnologyOutcome struct {
	Name              string
	FilesUploaded     int
	FilesUploadFailed int
	FilesDeleted      int
	FilesDeleteFailed int
	BytesUploaded     int64
}

// RunTotals aggregates the run across technologies.
type RunTotals struct {
	TechnologiesTotal           int
	TechnologiesFullySuccessful int
	BytesUploaded               int64
}

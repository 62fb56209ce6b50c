package transfer

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"s3backup/internal/models"
	"s3backup/internal/report"
)

type fakeUploader struct {
	fail map[string]bool
	keys []string
}

func (f *fakeUploader) Upload(ctx context.Context, localPath, bucket, key string) error {
	name := localPath[strings.LastIndex(localPath, "/")+1:]
	if f.fail[name] {
		return errors.New("simulated upload failure")
	}
	f.keys = append(f.keys, key)
	return nil
}

func testFiles(names ...string) []models.File {
	files := make([]models.File, 0, len(names))
	for _, name := range names {
		files = append(files, models.File{
			Path:    "/backup/source/" + name,
			Name:    name,
			Size:    100,
			ModTime: time.Date(2023, 11, 2, 10, 0, 0, 0, time.UTC),
		})
	}
	return files
}

func testEngine(store Uploader) (*Engine, *[]string, *int) {
	removed := []string{}
	pauses := 0
	engine := New(store)
	engine.remove = func(path string) error {
		removed = append(removed, path)
		return nil
	}
	engine.pause = func(time.Duration) { pauses++ }
	return engine, &removed, &pauses
}

func testRun() models.RunContext {
	return models.RunContext{Site: "s", Hostname: "h", Bucket: "b"}
}

func deleteEntry() models.TechnologyEntry {
	return models.TechnologyEntry{Name: "java", Policy: models.PolicyDelete}
}

func TestRunDeletesOnlyAfterSuccessfulUpload(t *testing.T) {
	store := &fakeUploader{fail: map[string]bool{"B.class": true}}
	engine, removed, pauses := testEngine(store)
	sink := report.New("test")

	files := testFiles("A.class", "B.class", "C.class")
	outcome := engine.Run(context.Background(), deleteEntry(), files, testRun(), sink)

	if outcome.FilesUploaded != 2 {
		t.Errorf("FilesUploaded = %d, want %d", outcome.FilesUploaded, 2)
	}
	if outcome.FilesUploadFailed != 1 {
		t.Errorf("FilesUploadFailed = %d, want %d", outcome.FilesUploadFailed, 1)
	}
	if outcome.FilesDeleted != 2 {
		t.Errorf("FilesDeleted = %d, want %d", outcome.FilesDeleted, 2)
	}
	if outcome.FilesDeleteFailed != 0 {
		t.Errorf("FilesDeleteFailed = %d, want %d", outcome.FilesDeleteFailed, 0)
	}

	for _, path := range *removed {
		if strings.HasSuffix(path, "B.class") {
			t.Error("Run() deleted B.class whose upload failed")
		}
	}
	if len(*removed) != 2 {
		t.Errorf("len(removed) = %d, want %d", len(*removed), 2)
	}

	// The pause throttles the network path on every attempt, failures too.
	if *pauses != 3 {
		t.Errorf("pauses = %d, want %d", *pauses, 3)
	}
}

func TestRunCountersCoverEveryFile(t *testing.T) {
	store := &fakeUploader{fail: map[string]bool{"A.class": true, "C.class": true}}
	engine, _, _ := testEngine(store)
	sink := report.New("test")

	files := testFiles("A.class", "B.class", "C.class", "D.class")
	outcome := engine.Run(context.Background(), deleteEntry(), files, testRun(), sink)

	if outcome.FilesUploaded+outcome.FilesUploadFailed != len(files) {
		t.Errorf("FilesUploaded + FilesUploadFailed = %d, want %d",
			outcome.FilesUploaded+outcome.FilesUploadFailed, len(files))
	}
}

func TestRunKeepPolicyNeverDeletes(t *testing.T) {
	store := &fakeUploader{}
	engine, removed, _ := testEngine(store)
	sink := report.New("test")

	entry := models.TechnologyEntry{Name: "java", Policy: models.PolicyKeep}
	outcome := engine.Run(context.Background(), entry, testFiles("A.class", "B.class"), testRun(), sink)

	if outcome.FilesUploaded != 2 {
		t.Errorf("FilesUploaded = %d, want %d", outcome.FilesUploaded, 2)
	}
	if len(*removed) != 0 {
		t.Errorf("len(removed) = %d, want %d", len(*removed), 0)
	}
	if outcome.FilesDeleted != 0 {
		t.Errorf("FilesDeleted = %d, want %d", outcome.FilesDeleted, 0)
	}
}

func TestRunPermissionDeniedDelete(t *testing.T) {
	store := &fakeUploader{}
	engine, _, _ := testEngine(store)
	engine.remove = func(path string) error { return fs.ErrPermission }
	sink := report.New("test")

	outcome := engine.Run(context.Background(), deleteEntry(), testFiles("A.class"), testRun(), sink)

	// A failed delete is not an upload failure.
	if outcome.FilesUploaded != 1 {
		t.Errorf("FilesUploaded = %d, want %d", outcome.FilesUploaded, 1)
	}
	if outcome.FilesUploadFailed != 0 {
		t.Errorf("FilesUploadFailed = %d, want %d", outcome.FilesUploadFailed, 0)
	}
	if outcome.FilesDeleteFailed != 1 {
		t.Errorf("FilesDeleteFailed = %d, want %d", outcome.FilesDeleteFailed, 1)
	}

	records := sink.Records()
	if len(records) != 1 || !strings.Contains(records[0].Message, "Delete it manually") {
		t.Errorf("sink records = %v, want a manual-deletion error", records)
	}
}

func TestRunOtherDeleteError(t *testing.T) {
	store := &fakeUploader{}
	engine, _, _ := testEngine(store)
	engine.remove = func(path string) error { return errors.New("device busy") }
	sink := report.New("test")

	outcome := engine.Run(context.Background(), deleteEntry(), testFiles("A.class"), testRun(), sink)

	if outcome.FilesDeleteFailed != 1 {
		t.Errorf("FilesDeleteFailed = %d, want %d", outcome.FilesDeleteFailed, 1)
	}
	records := sink.Records()
	if len(records) != 1 || !strings.Contains(records[0].Message, "Failed to delete") {
		t.Errorf("sink records = %v, want a delete-failure error", records)
	}
}

func TestRunDestinationKeys(t *testing.T) {
	store := &fakeUploader{}
	engine, _, _ := testEngine(store)
	sink := report.New("test")

	engine.Run(context.Background(), deleteEntry(), testFiles("A.class"), testRun(), sink)

	if len(store.keys) != 1 {
		t.Fatalf("len(keys) = %d, want %d", len(store.keys), 1)
	}
	if store.keys[0] != "s/java/h/2023/11/A.class" {
		t.Errorf("key = %s, want %s", store.keys[0], "s/java/h/2023/11/A.class")
	}
}

func TestRunPauseUsesConfiguredDelay(t *testing.T) {
	store := &fakeUploader{}
	engine, _, _ := testEngine(store)
	var delays []time.Duration
	engine.pause = func(d time.Duration) { delays = append(delays, d) }
	sink := report.New("test")

	run := testRun()
	run.InterUploadDelay = 2 * time.Second
	engine.Run(context.Background(), deleteEntry(), testFiles("A.class", "B.class"), run, sink)

	if len(delays) != 2 {
		t.Fatalf("len(delays) = %d, want %d", len(delays), 2)
	}
	for i, d := range delays {
		if d != 2*time.Second {
			t.Errorf("delays[%d] = %v, want %v", i, d, 2*time.Second)
		}
	}
}

func TestRunEmptyFileList(t *testing.T) {
	store := &fakeUploader{}
	engine, _, pauses := testEngine(store)
	sink := report.New("test")

	outcome := engine.Run(context.Background(), deleteEntry(), nil, testRun(), sink)

	if outcome.FilesUploaded != 0 || outcome.FilesUploadFailed != 0 {
		t.Errorf("outcome = %+v, want zero counters", outcome)
	}
	if *pauses != 0 {
		t.Errorf("pauses = %d, want %d", *pauses, 0)
	}
}

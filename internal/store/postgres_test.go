package store

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/JonMunkholm/beadinspect/internal/config"
	"github.com/JonMunkholm/beadinspect/internal/core"
)

// openTestStore connects to BEAD_TEST_DATABASE_URL or skips the test.
func openTestStore(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("BEAD_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BEAD_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := OpenPool(ctx, config.DatabaseConfig{
		URL:             url,
		MaxConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("OpenPool() error = %v", err)
	}
	pg := NewPostgres(pool)
	t.Cleanup(pg.Close)

	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return pg
}

func TestPostgres_WriteAndRead(t *testing.T) {
	pg := openTestStore(t)
	ctx := context.Background()

	run := testRun(t, time.Now().Format(core.StampLayout))
	run.StartedAt = time.Now()
	rows := 3
	run.Stats = []core.FormatStats{
		{DataFormat: "challengers", Errors: 1},
		{DataFormat: "challenges", TotalRows: &rows, Errors: 1},
	}

	location, err := pg.Prepare(run)
	if err != nil || location != "validation_runs/"+run.ID.String() {
		t.Fatalf("Prepare() = %q, %v", location, err)
	}
	if err := pg.Write(ctx, run); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	issues, err := pg.RunIssues(ctx, run.Stamp)
	if err != nil {
		t.Fatalf("RunIssues() error = %v", err)
	}
	if !reflect.DeepEqual(issues, run.Issues) {
		t.Errorf("RunIssues() = %+v, want %+v", issues, run.Issues)
	}

	runs, err := pg.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	var found bool
	for _, r := range runs {
		if r.ID == run.ID {
			found = true
			if r.IssueCount != 2 || !reflect.DeepEqual(r.Formats, run.Formats) {
				t.Errorf("stored run = %+v", r)
			}
		}
	}
	if !found {
		t.Error("ListRuns() did not return the written run")
	}

	if err := pg.Write(ctx, run); err == nil {
		t.Error("Write() stored the same run twice")
	}
}

func TestPostgres_RunNotFound(t *testing.T) {
	pg := openTestStore(t)

	_, err := pg.RunIssues(context.Background(), "19000101_000000")
	if !errors.Is(err, core.ErrRunNotFound) {
		t.Errorf("RunIssues() error = %v, want ErrRunNotFound", err)
	}
}

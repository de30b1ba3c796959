package index

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomster12/growth-sub000/pkg/world"
)

func openTemp(t *testing.T) *Index {
	t.Helper()
	x, err := Open(filepath.Join(t.TempDir(), "index", "runs.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func TestRecordAndRecent(t *testing.T) {
	x := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i := 0; i < 3; i++ {
		r := Run{
			ID:             string(rune('a' + i)),
			Seed:           int64(10 + i),
			Attempt:        i,
			Stage:          world.StageDone,
			Status:         StatusOK,
			Sites:          100 + i,
			BoundaryEdges:  40,
			BoundaryLength: 628.3,
			ElapsedMS:      12,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := x.Record(ctx, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := x.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created_at = %v", runs[0].CreatedAt)
	}
	if runs[0].Sites != 102 || runs[0].BoundaryLength != 628.3 {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestRecordReplacesSameID(t *testing.T) {
	x := openTemp(t)
	ctx := context.Background()
	r := Run{ID: "same", Stage: world.StageClip, Status: StatusFailed, Error: "boom", CreatedAt: time.Now()}
	if err := x.Record(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Status = StatusOK
	r.Error = ""
	if err := x.Record(ctx, r); err != nil {
		t.Fatal(err)
	}
	runs, err := x.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != StatusOK {
		t.Errorf("runs = %+v", runs)
	}
}

func TestFromAttempt(t *testing.T) {
	failed := FromAttempt(world.Attempt{
		RunID:    "r1",
		Seed:     7,
		Attempt:  1,
		Stage:    world.StageGraph,
		Err:      errors.New("broken"),
		Elapsed:  1500 * time.Millisecond,
		Finished: time.Now(),
	})
	if failed.Status != StatusFailed || failed.Error != "broken" || failed.ElapsedMS != 1500 {
		t.Errorf("failed run = %+v", failed)
	}
	if failed.Sites != 0 {
		t.Errorf("failed run without world has %d sites", failed.Sites)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}

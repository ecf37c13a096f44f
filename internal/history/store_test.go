package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"relicnotify/internal/dispatch"
	"relicnotify/internal/history"
	"relicnotify/internal/services"
	"relicnotify/internal/target"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListAttempts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	attempts := []history.Attempt{
		{RunID: "r1", Job: "checkout", Index: 1, Protocol: "application", Identifier: "42", StartedAt: base, Duration: 120 * time.Millisecond},
		{RunID: "r1", Job: "checkout", Index: 2, Protocol: "entity", Identifier: "G1", European: true, Status: history.StatusFailed, ErrorKind: "credential", ErrorMessage: "no key", StartedAt: base.Add(time.Second)},
		{RunID: "r2", Job: "billing", Index: 1, Protocol: "application", Identifier: "7", StartedAt: base.Add(time.Hour)},
	}
	for _, a := range attempts {
		if _, err := store.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}

	all, err := store.ListAttempts(ctx, history.Filter{})
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(all) != 3 || all[0].RunID != "r2" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	run1, err := store.ListAttempts(ctx, history.Filter{RunID: "r1"})
	if err != nil {
		t.Fatalf("ListAttempts run: %v", err)
	}
	if len(run1) != 2 {
		t.Fatalf("expected two attempts for r1, got %d", len(run1))
	}
	failed := run1[0]
	if failed.Index != 2 || failed.Status != history.StatusFailed || !failed.European || failed.ErrorKind != "credential" || failed.ErrorMessage != "no key" {
		t.Fatalf("unexpected failed attempt: %+v", failed)
	}
	if ok := run1[1]; ok.Status != history.StatusSuccess || ok.Duration != 120*time.Millisecond || !ok.StartedAt.Equal(base) {
		t.Fatalf("unexpected success attempt: %+v", ok)
	}

	limited, err := store.ListAttempts(ctx, history.Filter{Job: "checkout", Limit: 1})
	if err != nil {
		t.Fatalf("ListAttempts limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Identifier != "G1" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}
}

func TestRecordAttemptRequiresRunID(t *testing.T) {
	store := openStore(t)
	if _, err := store.RecordAttempt(context.Background(), history.Attempt{Protocol: "application"}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestRecordRunAndGetRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.RecordRun(ctx, history.Run{RunID: "r1", Job: "checkout", Mode: "perform", StartedAt: started, Duration: 2 * time.Second, Targets: 2, Failed: 1}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	run, err := store.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil || run.Job != "checkout" || run.Mode != "perform" || run.Targets != 2 || run.Failed != 1 || run.Duration != 2*time.Second {
		t.Fatalf("unexpected run: %+v", run)
	}

	missing, err := store.GetRun(ctx, "absent")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing run, got %+v %v", missing, err)
	}
}

func TestPruneRemovesOldRows(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, started := range []time.Time{old, recent} {
		if _, err := store.RecordAttempt(ctx, history.Attempt{RunID: started.Format("2006"), Index: 1, Protocol: "application", StartedAt: started}); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
		if err := store.RecordRun(ctx, history.Run{RunID: started.Format("2006"), Mode: "run", StartedAt: started}); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	removed, err := store.Prune(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one attempt removed, got %d", removed)
	}
	if run, _ := store.GetRun(ctx, "2023"); run != nil {
		t.Fatalf("expected old run pruned, got %+v", run)
	}
	remaining, err := store.ListAttempts(ctx, history.Filter{})
	if err != nil || len(remaining) != 1 || remaining[0].RunID != "2024" {
		t.Fatalf("unexpected remaining attempts: %+v %v", remaining, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.RecordAttempt(ctx, history.Attempt{RunID: "r", Index: 1, Protocol: "entity"}); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	attempts, err := reopened.ListAttempts(ctx, history.Filter{})
	if err != nil || len(attempts) != 1 {
		t.Fatalf("expected persisted attempt, got %+v %v", attempts, err)
	}
}

func TestRecorderObservesDispatch(t *testing.T) {
	store := openStore(t)
	recorder := history.NewRecorder(store, nil)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	credErr := services.Wrap(services.ErrCredential, "dispatch", "resolve credentials", "no api key", nil)
	recorder.TargetFinished(ctx, dispatch.Outcome{RunID: "r9", Job: "checkout", Index: 1, Protocol: target.ProtocolLegacy, Identifier: "42", Started: started})
	recorder.TargetFinished(ctx, dispatch.Outcome{RunID: "r9", Job: "checkout", Index: 2, Protocol: target.ProtocolEntity, Identifier: "G", Started: started.Add(time.Second), Err: credErr})
	recorder.RunFinished(ctx, dispatch.Summary{RunID: "r9", Job: "checkout", Mode: dispatch.ModePerform, Started: started, Targets: 2, Failed: 1})

	attempts, err := store.ListAttempts(ctx, history.Filter{RunID: "r9"})
	if err != nil || len(attempts) != 2 {
		t.Fatalf("unexpected attempts: %+v %v", attempts, err)
	}
	if attempts[0].Status != history.StatusFailed || attempts[0].ErrorKind != "credential" {
		t.Fatalf("unexpected failed attempt: %+v", attempts[0])
	}
	run, err := store.GetRun(ctx, "r9")
	if err != nil || run == nil || run.Failed != 1 || run.Mode != "perform" {
		t.Fatalf("unexpected run: %+v %v", run, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := history.Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.BumpSchemaVersionForTest(ctx, 99); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := history.Open(ctx, path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

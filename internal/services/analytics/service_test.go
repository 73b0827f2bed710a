package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	pgrepo "github.com/ivankudzin/sensgen/internal/repo/postgres"
)

type analyticsStoreStub struct {
	sessionID string
	events    []pgrepo.EventWriteRecord
	err       error
}

func (s *analyticsStoreStub) InsertBatch(_ context.Context, sessionID string, events []pgrepo.EventWriteRecord) error {
	if s.err != nil {
		return s.err
	}
	s.sessionID = sessionID
	s.events = append([]pgrepo.EventWriteRecord(nil), events...)
	return nil
}

func TestIngestBatchLimitValidation(t *testing.T) {
	store := &analyticsStoreStub{}
	svc := NewService(store, Config{MaxBatchSize: 100})

	events := make([]BatchEvent, 0, 101)
	for i := 0; i < 101; i++ {
		events = append(events, BatchEvent{Name: "evt", TS: 1})
	}

	err := svc.IngestBatch(context.Background(), "sid", events)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.IngestBatch(context.Background(), "sid", []BatchEvent{{Name: "  "}}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank name, got %v", err)
	}
}

func TestIngestBatchSavesRows(t *testing.T) {
	store := &analyticsStoreStub{}
	svc := NewService(store, Config{MaxBatchSize: 100})
	fixedNow := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	err := svc.IngestBatch(context.Background(), "sid-42", []BatchEvent{
		{Name: "login_succeeded", TS: 1_700_000_000, Props: map[string]any{"platform": "ios"}},
		{Name: "profile_generated", TS: 1_700_000_000_500, Props: map[string]any{"tier": "high"}},
		{Name: "logout", TS: 0, Props: nil},
	})
	if err != nil {
		t.Fatalf("ingest batch: %v", err)
	}

	if store.sessionID != "sid-42" {
		t.Fatalf("unexpected session id in store: %q", store.sessionID)
	}
	if len(store.events) != 3 {
		t.Fatalf("unexpected event rows count: got %d want 3", len(store.events))
	}
	if store.events[0].OccurredAt.Unix() != 1_700_000_000 {
		t.Fatalf("unexpected seconds ts conversion: %v", store.events[0].OccurredAt)
	}
	if store.events[1].OccurredAt.UnixMilli() != 1_700_000_000_500 {
		t.Fatalf("unexpected milliseconds ts conversion: %v", store.events[1].OccurredAt)
	}
	if !store.events[2].OccurredAt.Equal(fixedNow) {
		t.Fatalf("unexpected fallback ts: got %v want %v", store.events[2].OccurredAt, fixedNow)
	}
	if store.events[2].Props == nil {
		t.Fatalf("expected empty props map instead of nil")
	}
}

func TestRecordWrapsStoreErrors(t *testing.T) {
	storeErr := errors.New("db down")
	svc := NewService(&analyticsStoreStub{err: storeErr}, Config{})

	err := svc.Record(context.Background(), "sid", "logout", nil)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestRecordWithoutStore(t *testing.T) {
	svc := NewService(nil, Config{})
	if err := svc.Record(context.Background(), "sid", "logout", nil); err == nil {
		t.Fatalf("expected error without store")
	}
}

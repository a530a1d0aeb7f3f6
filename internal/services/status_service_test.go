package services

import (
	"context"
	"testing"
	"time"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/lookup"
	"github.com/atharvsharma432199/phone-api/internal/repo"
)

func TestStatusService_Snapshot(t *testing.T) {
	db := newTestDB(t)
	finder := &fakeFinder{records: map[string]domain.PersonRecord{"1": {}, "2": {}}}
	cache := lookup.NewCache(4)
	cache.Put("1", nil)

	insertKey(t, db, domain.APIKey{Key: "a", Owner: "o", MaxUsage: 10, CurrentUsage: 2, IsActive: true})
	insertKey(t, db, domain.APIKey{Key: "b", Owner: "o", MaxUsage: 10, CurrentUsage: 1, IsActive: false})
	ledger := &Ledger{DB: db}
	_ = ledger.RecordAttempt(context.Background(), "a", "1", true, time.Millisecond)

	s := &StatusService{Keys: &KeyService{DB: db}, Ledger: ledger, Records: finder, Cache: cache}
	st, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !st.RecordStoreAvailable || st.Records != 2 || st.TotalKeys != 2 || st.ActiveKeys != 1 ||
		st.TotalKeyUsage != 3 || st.CacheEntries != 1 || st.Usage.TotalCalls != 1 {
		t.Fatalf("snapshot=%+v", st)
	}

	finder.setErr(repo.ErrStoreUnavailable)
	st, err = s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unavailable store must not fail the snapshot: %v", err)
	}
	if st.RecordStoreAvailable || st.Records != 0 {
		t.Fatalf("snapshot=%+v", st)
	}
}

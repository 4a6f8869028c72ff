package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	entries []domain.HistoryEntry
	err     error
}

func (f *fakeStore) AppendHistory(_ context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	if f.err != nil {
		return domain.HistoryEntry{}, f.err
	}
	entry.Seq = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeStore) ListHistory(_ context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.HistoryEntry
	for _, e := range f.entries {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

func statusPtr(s domain.Status) *domain.Status { return &s }

func TestAppendAndReadOrders(t *testing.T) {
	store := &fakeStore{}
	ledger := New(store)
	ctx := context.Background()
	leadID := uuid.New()
	actor := uuid.New()

	steps := []domain.Status{domain.StatusSubmitted, domain.StatusHot, domain.StatusVisited}
	var prev *domain.Status
	for _, s := range steps {
		if _, err := ledger.Append(ctx, leadID, prev, s, "", &actor); err != nil {
			t.Fatalf("append %s: %v", s, err)
		}
		prev = statusPtr(s)
	}

	chronological, err := ledger.ReadChronological(ctx, leadID)
	if err != nil {
		t.Fatalf("read chronological: %v", err)
	}
	recent, err := ledger.ReadAll(ctx, leadID)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}

	if len(chronological) != 3 || len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d and %d", len(chronological), len(recent))
	}
	if chronological[0].NewStatus != domain.StatusSubmitted || recent[0].NewStatus != domain.StatusVisited {
		t.Fatalf("unexpected ordering: first=%s recent=%s", chronological[0].NewStatus, recent[0].NewStatus)
	}
	if chronological[0].PreviousStatus != nil {
		t.Fatal("expected first entry to have no previous status")
	}
	if err := VerifyChain(chronological, statusPtr(domain.StatusVisited)); err != nil {
		t.Fatalf("expected valid chain: %v", err)
	}
}

func TestAppendFailsLoudly(t *testing.T) {
	ledger := New(&fakeStore{err: errors.New("db down")})

	_, err := ledger.Append(context.Background(), uuid.New(), nil, domain.StatusHot, "", nil)
	if !apperr.HasCode(err, apperr.CodePersistenceFailure) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
}

func TestVerifyChainDetectsBreaks(t *testing.T) {
	now := time.Now()
	entries := []domain.HistoryEntry{
		{NewStatus: domain.StatusSubmitted, CreatedAt: now},
		{PreviousStatus: statusPtr(domain.StatusWarm), NewStatus: domain.StatusHot, CreatedAt: now},
	}
	if err := VerifyChain(entries, nil); err == nil {
		t.Fatal("expected broken chain to be detected")
	}

	entries[1].PreviousStatus = statusPtr(domain.StatusSubmitted)
	if err := VerifyChain(entries, statusPtr(domain.StatusCold)); err == nil {
		t.Fatal("expected tail mismatch to be detected")
	}
}

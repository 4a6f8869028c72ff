// Package history is the append-only audit trail of lead status changes.
package history

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"

	"github.com/google/uuid"
)

// Store persists history entries. ListByLead returns entries oldest first,
// ordered by created_at then seq.
type Store interface {
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	ListHistory(ctx context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error)
}

// Ledger appends and reads status history. It never updates or deletes.
type Ledger struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Append records one transition. Store failures are returned as
// persistence failures so the enclosing transaction rolls back.
func (l *Ledger) Append(ctx context.Context, leadID uuid.UUID, previous *domain.Status, next domain.Status, remarks string, actor *uuid.UUID) (domain.HistoryEntry, error) {
	entry := domain.HistoryEntry{
		ID:             uuid.New(),
		LeadID:         leadID,
		PreviousStatus: previous,
		NewStatus:      next,
		Remarks:        remarks,
		ChangedBy:      actor,
		CreatedAt:      l.now().UTC(),
	}

	saved, err := l.store.AppendHistory(ctx, entry)
	if err != nil {
		return domain.HistoryEntry{}, apperr.Persistence("append lead history", err)
	}
	return saved, nil
}

// ReadAll returns the lead's history most recent first.
func (l *Ledger) ReadAll(ctx context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	entries, err := l.ReadChronological(ctx, leadID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

// ReadChronological returns the lead's history oldest first.
func (l *Ledger) ReadChronological(ctx context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	entries, err := l.store.ListHistory(ctx, leadID)
	if err != nil {
		return nil, apperr.Persistence("read lead history", err)
	}
	return entries, nil
}

// VerifyChain checks that each entry's previous status equals the prior
// entry's new status and, when current is given, that the tail matches it.
func VerifyChain(entries []domain.HistoryEntry, current *domain.Status) error {
	for i := 1; i < len(entries); i++ {
		prev := entries[i].PreviousStatus
		if prev == nil || *prev != entries[i-1].NewStatus {
			return fmt.Errorf("history entry %d breaks chain: previous %v, expected %q", i, prev, entries[i-1].NewStatus)
		}
	}
	if current != nil && len(entries) > 0 && entries[len(entries)-1].NewStatus != *current {
		return fmt.Errorf("history tail %q does not match lead status %q", entries[len(entries)-1].NewStatus, *current)
	}
	return nil
}

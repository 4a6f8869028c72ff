package memory

import (
	"context"
	"slices"

	leaddomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"

	"github.com/google/uuid"
)

func (s *Store) CreateLead(_ context.Context, lead leaddomain.Lead) (leaddomain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateLead"); err != nil {
		return leaddomain.Lead{}, err
	}
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (leaddomain.Lead, error) {
	defer s.readCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("GetLead"); err != nil {
		return leaddomain.Lead{}, err
	}
	lead, ok := s.leads[id]
	if !ok {
		return leaddomain.Lead{}, leaddomain.ErrLeadNotFound
	}
	return lead, nil
}

// GetLeadForUpdate is GetLead; RunInTx already serializes writers.
func (s *Store) GetLeadForUpdate(ctx context.Context, id uuid.UUID) (leaddomain.Lead, error) {
	return s.GetLead(ctx, id)
}

func (s *Store) UpdateLead(_ context.Context, lead leaddomain.Lead) (leaddomain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateLead"); err != nil {
		return leaddomain.Lead{}, err
	}
	if _, ok := s.leads[lead.ID]; !ok {
		return leaddomain.Lead{}, leaddomain.ErrLeadNotFound
	}
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *Store) AppendHistory(_ context.Context, entry leaddomain.HistoryEntry) (leaddomain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("AppendHistory"); err != nil {
		return leaddomain.HistoryEntry{}, err
	}
	s.seq++
	entry.Seq = s.seq
	s.history[entry.LeadID] = append(s.history[entry.LeadID], entry)
	return entry, nil
}

// ListHistory returns entries oldest first, by timestamp then sequence.
func (s *Store) ListHistory(ctx context.Context, leadID uuid.UUID) ([]leaddomain.HistoryEntry, error) {
	defer s.readCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListHistory"); err != nil {
		return nil, err
	}
	entries := slices.Clone(s.history[leadID])
	slices.SortStableFunc(entries, func(a, b leaddomain.HistoryEntry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.Seq - b.Seq)
	})
	return entries, nil
}

// Package memory is an in-process implementation of every store the lead
// and commission services use. It backs tests and local runs without Postgres.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	commissiondomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	leaddomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"

	"github.com/google/uuid"
)

type txMarker struct{}

// Store keeps all state in maps guarded by a mutex. RunInTx serializes
// transactions and restores a snapshot when the function fails. Reads made
// outside a transaction wait for the running one to finish, so they only
// see committed state.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	franchises       map[uuid.UUID]*float64
	leads            map[uuid.UUID]leaddomain.Lead
	history          map[uuid.UUID][]leaddomain.HistoryEntry
	seq              int64
	commissions      map[uuid.UUID]commissiondomain.Commission
	commissionByLead map[uuid.UUID]uuid.UUID
	tokens           map[uuid.UUID][]string
	failures         map[string]error
}

func New() *Store {
	return &Store{
		franchises:       make(map[uuid.UUID]*float64),
		leads:            make(map[uuid.UUID]leaddomain.Lead),
		history:          make(map[uuid.UUID][]leaddomain.HistoryEntry),
		commissions:      make(map[uuid.UUID]commissiondomain.Commission),
		commissionByLead: make(map[uuid.UUID]uuid.UUID),
		tokens:           make(map[uuid.UUID][]string),
		failures:         make(map[string]error),
	}
}

// FailOn makes the named store method return err until cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) failure(method string) error {
	return s.failures[method]
}

// RunInTx runs fn as one atomic unit. Nested calls join the outer unit.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// readCommitted blocks until no transaction is in flight when ctx is not
// already inside one. The returned func releases the wait.
func (s *Store) readCommitted(ctx context.Context) func() {
	if ctx.Value(txMarker{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

type snapshot struct {
	leads            map[uuid.UUID]leaddomain.Lead
	history          map[uuid.UUID][]leaddomain.HistoryEntry
	seq              int64
	commissions      map[uuid.UUID]commissiondomain.Commission
	commissionByLead map[uuid.UUID]uuid.UUID
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make(map[uuid.UUID][]leaddomain.HistoryEntry, len(s.history))
	for id, entries := range s.history {
		history[id] = slices.Clone(entries)
	}
	return snapshot{
		leads:            maps.Clone(s.leads),
		history:          history,
		seq:              s.seq,
		commissions:      maps.Clone(s.commissions),
		commissionByLead: maps.Clone(s.commissionByLead),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = snap.leads
	s.history = snap.history
	s.seq = snap.seq
	s.commissions = snap.commissions
	s.commissionByLead = snap.commissionByLead
}

// SeedFranchise registers a franchise; a nil percentage means none configured.
func (s *Store) SeedFranchise(id uuid.UUID, percentage *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.franchises[id] = percentage
}

// SeedLead stores a lead as-is, without writing history.
func (s *Store) SeedLead(lead leaddomain.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = lead
}

// AddDeviceToken registers a push token for owner.
func (s *Store) AddDeviceToken(ownerID uuid.UUID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[ownerID] = append(s.tokens[ownerID], token)
}

// CountCommissions returns how many commissions exist for leadID.
func (s *Store) CountCommissions(leadID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.commissions {
		if c.LeadID == leadID {
			n++
		}
	}
	return n
}

package memory

import (
	"context"

	commissiondomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"

	"github.com/google/uuid"
)

func (s *Store) CreateCommission(_ context.Context, c commissiondomain.Commission) (commissiondomain.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("CreateCommission"); err != nil {
		return commissiondomain.Commission{}, err
	}
	if _, exists := s.commissionByLead[c.LeadID]; exists {
		return commissiondomain.Commission{}, commissiondomain.ErrDuplicateCommission
	}
	s.commissions[c.ID] = c
	s.commissionByLead[c.LeadID] = c.ID
	return c, nil
}

func (s *Store) GetCommission(ctx context.Context, id uuid.UUID) (commissiondomain.Commission, error) {
	defer s.readCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commissions[id]
	if !ok {
		return commissiondomain.Commission{}, commissiondomain.ErrCommissionNotFound
	}
	return c, nil
}

func (s *Store) GetCommissionForUpdate(ctx context.Context, id uuid.UUID) (commissiondomain.Commission, error) {
	return s.GetCommission(ctx, id)
}

func (s *Store) GetCommissionByLead(ctx context.Context, leadID uuid.UUID) (commissiondomain.Commission, error) {
	defer s.readCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("GetCommissionByLead"); err != nil {
		return commissiondomain.Commission{}, err
	}
	id, ok := s.commissionByLead[leadID]
	if !ok {
		return commissiondomain.Commission{}, commissiondomain.ErrCommissionNotFound
	}
	return s.commissions[id], nil
}

func (s *Store) UpdateCommission(_ context.Context, c commissiondomain.Commission) (commissiondomain.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateCommission"); err != nil {
		return commissiondomain.Commission{}, err
	}
	if _, ok := s.commissions[c.ID]; !ok {
		return commissiondomain.Commission{}, commissiondomain.ErrCommissionNotFound
	}
	s.commissions[c.ID] = c
	return c, nil
}

func (s *Store) GetCommissionPercentage(ctx context.Context, franchiseID uuid.UUID) (*float64, error) {
	defer s.readCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("GetCommissionPercentage"); err != nil {
		return nil, err
	}
	pct := s.franchises[franchiseID]
	if pct == nil {
		return nil, nil
	}
	v := *pct
	return &v, nil
}

func (s *Store) ListTokens(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	defer s.readCommitted(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListTokens"); err != nil {
		return nil, err
	}
	return append([]string(nil), s.tokens[ownerID]...), nil
}

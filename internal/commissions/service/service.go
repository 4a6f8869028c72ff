// Package service settles commissions and exposes them for reading.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	leaddomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/sanitize"

	"github.com/google/uuid"
)

// Store persists commissions.
type Store interface {
	GetCommission(ctx context.Context, id uuid.UUID) (domain.Commission, error)
	GetCommissionForUpdate(ctx context.Context, id uuid.UUID) (domain.Commission, error)
	GetCommissionByLead(ctx context.Context, leadID uuid.UUID) (domain.Commission, error)
	UpdateCommission(ctx context.Context, c domain.Commission) (domain.Commission, error)
}

// LeadReader resolves the student name used in settlement notifications.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (leaddomain.Lead, error)
}

// Transactor runs fn atomically.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	tx       Transactor
	store    Store
	leads    LeadReader
	eventBus events.Bus
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func New(tx Transactor, store Store, leads LeadReader, eventBus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		tx:       tx,
		store:    store,
		leads:    leads,
		eventBus: eventBus,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Commission, error) {
	c, err := s.store.GetCommission(ctx, id)
	if err != nil {
		return domain.Commission{}, mapCommissionErr(err, map[string]any{"commissionId": id})
	}
	return c, nil
}

func (s *Service) GetByLead(ctx context.Context, leadID uuid.UUID) (domain.Commission, error) {
	c, err := s.store.GetCommissionByLead(ctx, leadID)
	if err != nil {
		return domain.Commission{}, mapCommissionErr(err, map[string]any{"leadId": leadID})
	}
	return c, nil
}

// AdvanceCommission moves a commission along Pending, Approved, Paid.
// Approval and payment notify the franchise after commit.
func (s *Service) AdvanceCommission(ctx context.Context, id uuid.UUID, requested, remarks string) (domain.Commission, error) {
	if _, ok := domain.ParseStatus(requested); !ok {
		_, err := domain.Commission{}.Advance(requested, remarks, s.now())
		return domain.Commission{}, err
	}

	remarks = sanitize.Text(remarks)

	var before, after domain.Commission
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.store.GetCommissionForUpdate(ctx, id)
		if err != nil {
			return mapCommissionErr(err, map[string]any{"commissionId": id})
		}

		next, err := before.Advance(requested, remarks, s.now())
		if err != nil {
			return err
		}

		after, err = s.store.UpdateCommission(ctx, next)
		if err != nil {
			return apperr.Persistence("update commission", err)
		}
		return nil
	})
	if err != nil {
		return domain.Commission{}, err
	}

	if before.Status != after.Status {
		s.metrics.ObserveCommissionAdvanced(string(after.Status))
		s.publishSettlement(ctx, after)
	}
	return after, nil
}

func (s *Service) publishSettlement(ctx context.Context, c domain.Commission) {
	studentName := ""
	if lead, err := s.leads.GetLead(ctx, c.LeadID); err == nil {
		studentName = lead.StudentName
	} else {
		s.log.WithContext(ctx).Warn("commission lead lookup failed", "error", err, "commissionId", c.ID, "leadId", c.LeadID)
	}

	switch c.Status {
	case domain.StatusApproved:
		s.eventBus.Publish(ctx, events.CommissionApproved{
			BaseEvent:        events.NewBaseEvent(),
			CommissionID:     c.ID,
			LeadID:           c.LeadID,
			FranchiseID:      c.FranchiseID,
			StudentName:      studentName,
			CommissionAmount: c.CommissionAmount,
		})
	case domain.StatusPaid:
		s.eventBus.Publish(ctx, events.CommissionPaid{
			BaseEvent:        events.NewBaseEvent(),
			CommissionID:     c.ID,
			LeadID:           c.LeadID,
			FranchiseID:      c.FranchiseID,
			StudentName:      studentName,
			CommissionAmount: c.CommissionAmount,
		})
	}
}

func mapCommissionErr(err error, details map[string]any) error {
	if errors.Is(err, domain.ErrCommissionNotFound) {
		return apperr.NotFound("commission not found").
			WithCode(apperr.CodeCommissionNotFound).
			WithDetails(details)
	}
	return apperr.Persistence("load commission", err)
}

// Package service implements the lead lifecycle: submission, status changes
// and enrollment, each committed atomically with its history entry.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/calculator"
	commissiondomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/history"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/metrics"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/phone"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/sanitize"

	"github.com/google/uuid"
)

type Service struct {
	tx          Transactor
	leads       LeadStore
	ledger      *history.Ledger
	commissions CommissionReader
	calc        CommissionMaterializer
	eventBus    events.Bus
	metrics     *metrics.Metrics
	log         *logger.Logger
	now         func() time.Time
}

func New(tx Transactor, leads LeadStore, ledger *history.Ledger, commissions CommissionReader, calc CommissionMaterializer, eventBus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		tx:          tx,
		leads:       leads,
		ledger:      ledger,
		commissions: commissions,
		calc:        calc,
		eventBus:    eventBus,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// SubmitInput is a franchise's referral.
type SubmitInput struct {
	FranchiseID      uuid.UUID
	StudentName      string
	StudentPhone     string
	StudentEmail     *string
	ParentName       *string
	CourseInterested *string
	CurrentClass     *string
	City             *string
	Remarks          string
}

// EnrollmentResult is the outcome of RecordEnrollment.
type EnrollmentResult struct {
	Lead       domain.Lead                 `json:"lead"`
	Commission commissiondomain.Commission `json:"commission"`
}

// SubmitLead creates a lead in Submitted with its first history entry.
func (s *Service) SubmitLead(ctx context.Context, in SubmitInput, actor *uuid.UUID) (domain.Lead, error) {
	normalized, ok := phone.Parse(in.StudentPhone)
	if !ok {
		return domain.Lead{}, apperr.Validation("invalid student phone number").
			WithDetails(map[string]any{"studentPhone": in.StudentPhone})
	}

	now := s.now().UTC()
	lead := domain.Lead{
		ID:               uuid.New(),
		FranchiseID:      in.FranchiseID,
		StudentName:      sanitize.Text(in.StudentName),
		StudentPhone:     normalized,
		StudentEmail:     in.StudentEmail,
		ParentName:       sanitize.TextPtr(in.ParentName),
		CourseInterested: sanitize.TextPtr(in.CourseInterested),
		CurrentClass:     sanitize.TextPtr(in.CurrentClass),
		City:             sanitize.TextPtr(in.City),
		Status:           domain.StatusSubmitted,
		Remarks:          sanitize.Text(in.Remarks),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var created domain.Lead
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.leads.CreateLead(ctx, lead)
		if err != nil {
			return apperr.Persistence("create lead", err)
		}
		_, err = s.ledger.Append(ctx, created.ID, nil, domain.StatusSubmitted, created.Remarks, actor)
		return err
	})
	if err != nil {
		return domain.Lead{}, err
	}

	s.metrics.ObserveLeadTransition(string(domain.StatusSubmitted))
	s.eventBus.Publish(ctx, events.LeadSubmitted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      created.ID,
		FranchiseID: created.FranchiseID,
		StudentName: created.StudentName,
	})
	return created, nil
}

// GetLead loads a lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.leads.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, mapLeadErr(err, id)
	}
	return lead, nil
}

// History returns the lead's status history, most recent first unless
// chronological is set.
// A history that does not chain up to the lead's status is logged, not
// rejected, so auditors can still read it.
func (s *Service) History(ctx context.Context, id uuid.UUID, chronological bool) ([]domain.HistoryEntry, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.ReadChronological(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := history.VerifyChain(entries, &lead.Status); err != nil {
		s.log.WithContext(ctx).WithLeadID(id.String()).Warn("lead history chain broken", "error", err)
	}

	if !chronological {
		slices.Reverse(entries)
	}
	return entries, nil
}

// ChangeLeadStatus validates and applies a status change. The lead update,
// its history entry and, for an Enrolled lead that already carries an
// admission amount, the commission commit together or not at all.
func (s *Service) ChangeLeadStatus(ctx context.Context, leadID uuid.UUID, requested, remarks string, actor *uuid.UUID) (domain.Lead, error) {
	current, err := s.GetLead(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}
	if _, err := domain.ValidateTransition(current, requested, s.now()); err != nil {
		return domain.Lead{}, err
	}
	remarks = sanitize.Text(remarks)

	var (
		updated    domain.Lead
		previous   domain.Status
		commission *commissiondomain.Commission
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.leads.GetLeadForUpdate(ctx, leadID)
		if err != nil {
			return mapLeadErr(err, leadID)
		}

		now := s.now()
		transition, err := domain.ValidateTransition(locked, requested, now)
		if err != nil {
			return err
		}

		previous = locked.Status
		updated, err = s.leads.UpdateLead(ctx, locked.Apply(transition, remarks, now))
		if err != nil {
			return apperr.Persistence("update lead status", err)
		}

		if _, err := s.ledger.Append(ctx, leadID, &previous, transition.To, remarks, actor); err != nil {
			return err
		}

		if transition.To == domain.StatusEnrolled && updated.AdmissionAmount != nil {
			commission, err = s.materializeIfMissing(ctx, updated, remarks)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}

	s.metrics.ObserveLeadTransition(string(updated.Status))
	if commission != nil {
		s.metrics.IncrementCommissionsCreated()
	}
	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         updated.ID,
		FranchiseID:    updated.FranchiseID,
		StudentName:    updated.StudentName,
		PreviousStatus: string(previous),
		NewStatus:      string(updated.Status),
		Remarks:        remarks,
		ActorID:        actor,
	})
	return updated, nil
}

// RecordEnrollment marks the lead Enrolled with an admission amount and
// creates its commission. A lead that already has a commission is rejected
// with already_enrolled. The lead keeps its own remarks; the enrollment
// remark goes to the history entry and the commission.
func (s *Service) RecordEnrollment(ctx context.Context, leadID uuid.UUID, admissionAmount float64, actor *uuid.UUID) (EnrollmentResult, error) {
	if err := calculator.ValidateAmount(admissionAmount); err != nil {
		return EnrollmentResult{}, err
	}
	admissionAmount = calculator.RoundAmount(admissionAmount)
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return EnrollmentResult{}, err
	}

	remarks := EnrollmentRemarks(admissionAmount)
	var (
		result   EnrollmentResult
		previous domain.Status
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.leads.GetLeadForUpdate(ctx, leadID)
		if err != nil {
			return mapLeadErr(err, leadID)
		}

		if _, err := s.commissions.GetCommissionByLead(ctx, leadID); err == nil {
			return apperr.Conflict("lead already enrolled").
				WithCode(apperr.CodeAlreadyEnrolled).
				WithDetails(map[string]any{"leadId": leadID})
		} else if !errors.Is(err, commissiondomain.ErrCommissionNotFound) {
			return apperr.Persistence("load commission", err)
		}

		now := s.now()
		transition, err := domain.ValidateTransition(locked, string(domain.StatusEnrolled), now)
		if err != nil {
			return err
		}

		previous = locked.Status
		next := locked.Apply(transition, locked.Remarks, now)
		next.AdmissionAmount = &admissionAmount

		result.Lead, err = s.leads.UpdateLead(ctx, next)
		if err != nil {
			return apperr.Persistence("record enrollment", err)
		}

		result.Commission, err = s.calc.Materialize(ctx, calculator.Input{
			LeadID:          leadID,
			FranchiseID:     locked.FranchiseID,
			AdmissionAmount: admissionAmount,
			Remarks:         remarks,
		})
		if err != nil {
			return err
		}

		_, err = s.ledger.Append(ctx, leadID, &previous, domain.StatusEnrolled, remarks, actor)
		return err
	})
	if err != nil {
		return EnrollmentResult{}, err
	}

	s.metrics.ObserveLeadTransition(string(domain.StatusEnrolled))
	s.metrics.IncrementCommissionsCreated()
	s.eventBus.Publish(ctx, events.LeadEnrolled{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           result.Lead.ID,
		FranchiseID:      result.Lead.FranchiseID,
		StudentName:      result.Lead.StudentName,
		PreviousStatus:   string(previous),
		AdmissionAmount:  admissionAmount,
		CommissionID:     result.Commission.ID,
		CommissionAmount: result.Commission.CommissionAmount,
		ActorID:          actor,
	})
	return result, nil
}

// EnrollmentRemarks is the history remark written for an enrollment.
func EnrollmentRemarks(amount float64) string {
	return fmt.Sprintf("Enrolled with admission amount: %.2f", amount)
}

func (s *Service) materializeIfMissing(ctx context.Context, lead domain.Lead, remarks string) (*commissiondomain.Commission, error) {
	if _, err := s.commissions.GetCommissionByLead(ctx, lead.ID); err == nil {
		return nil, nil
	} else if !errors.Is(err, commissiondomain.ErrCommissionNotFound) {
		return nil, apperr.Persistence("load commission", err)
	}

	created, err := s.calc.Materialize(ctx, calculator.Input{
		LeadID:          lead.ID,
		FranchiseID:     lead.FranchiseID,
		AdmissionAmount: *lead.AdmissionAmount,
		Remarks:         remarks,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func mapLeadErr(err error, id uuid.UUID) error {
	if errors.Is(err, domain.ErrLeadNotFound) {
		return apperr.NotFound("lead not found").
			WithCode(apperr.CodeLeadNotFound).
			WithDetails(map[string]any{"leadId": id})
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Persistence("load lead", err)
}

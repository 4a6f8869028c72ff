package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/calculator"
	commissiondomain "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/commissions/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/events"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/domain"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/leads/history"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/storage/memory"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"

	"github.com/google/uuid"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	bus   *events.InMemoryBus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := logger.New("development")
	store := memory.New()
	bus := events.NewInMemoryBus(log)
	calc := calculator.New(store, store, calculator.DefaultPercentage)
	svc := New(store, store, history.New(store), store, calc, bus, nil, log)
	t.Cleanup(bus.Wait)
	return fixture{svc: svc, store: store, bus: bus}
}

func (f fixture) seedLead(franchisePct *float64) domain.Lead {
	franchiseID := uuid.New()
	f.store.SeedFranchise(franchiseID, franchisePct)
	lead := domain.Lead{
		ID:          uuid.New(),
		FranchiseID: franchiseID,
		StudentName: "Ravi Kumar",
		Status:      domain.StatusSubmitted,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	f.store.SeedLead(lead)
	return lead
}

func pct(v float64) *float64 { return &v }

func TestChangeLeadStatusHistoryTracksEveryChange(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()
	actor := uuid.New()

	sequence := []domain.Status{
		domain.StatusLeadAcknowledged, domain.StatusHot, domain.StatusHot,
		domain.StatusCold, domain.StatusWarm, domain.StatusVisited,
	}
	var got domain.Lead
	for _, s := range sequence {
		var err error
		got, err = f.svc.ChangeLeadStatus(ctx, lead.ID, string(s), "call made", &actor)
		if err != nil {
			t.Fatalf("change to %s: %v", s, err)
		}
	}

	entries, err := f.svc.History(ctx, lead.ID, true)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != len(sequence) {
		t.Fatalf("expected %d entries, got %d", len(sequence), len(entries))
	}
	if entries[len(entries)-1].NewStatus != got.Status {
		t.Fatalf("expected tail %s to match lead status %s", entries[len(entries)-1].NewStatus, got.Status)
	}
	if *entries[0].PreviousStatus != domain.StatusSubmitted {
		t.Fatalf("expected first previous status Submitted, got %v", *entries[0].PreviousStatus)
	}
	if err := history.VerifyChain(entries, &got.Status); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if *entries[0].ChangedBy != actor {
		t.Fatal("expected actor to be recorded")
	}

	recent, err := f.svc.History(ctx, lead.ID, false)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if recent[0].NewStatus != domain.StatusVisited {
		t.Fatalf("expected most recent first, got %s", recent[0].NewStatus)
	}
}

func TestChangeLeadStatusInvalidStatusLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()

	_, err := f.svc.ChangeLeadStatus(ctx, lead.ID, "hot", "", nil)
	if !apperr.HasCode(err, apperr.CodeInvalidStatus) {
		t.Fatalf("expected invalid_status, got %v", err)
	}

	stored, _ := f.store.GetLead(ctx, lead.ID)
	if stored.Status != domain.StatusSubmitted {
		t.Fatalf("expected status unchanged, got %s", stored.Status)
	}
	entries, _ := f.svc.History(ctx, lead.ID, true)
	if len(entries) != 0 {
		t.Fatalf("expected no history, got %d", len(entries))
	}
}

func TestChangeLeadStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ChangeLeadStatus(context.Background(), uuid.New(), string(domain.StatusHot), "", nil)
	if !apperr.HasCode(err, apperr.CodeLeadNotFound) {
		t.Fatalf("expected lead_not_found, got %v", err)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found kind, got %v", apperr.GetKind(err))
	}
}

func TestEnrolledTwiceKeepsFirstEnrollmentDate(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()

	first := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }
	enrolled, err := f.svc.ChangeLeadStatus(ctx, lead.ID, string(domain.StatusEnrolled), "", nil)
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if enrolled.EnrollmentDate == nil || !enrolled.EnrollmentDate.Equal(first) {
		t.Fatalf("expected enrollment date %v, got %v", first, enrolled.EnrollmentDate)
	}

	f.svc.now = func() time.Time { return first.Add(72 * time.Hour) }
	again, err := f.svc.ChangeLeadStatus(ctx, lead.ID, string(domain.StatusEnrolled), "", nil)
	if err != nil {
		t.Fatalf("second enroll: %v", err)
	}
	if !again.EnrollmentDate.Equal(first) {
		t.Fatalf("expected enrollment date to stay %v, got %v", first, again.EnrollmentDate)
	}
	if f.store.CountCommissions(lead.ID) != 0 {
		t.Fatal("expected no commission without an admission amount")
	}
}

func TestHistoryAppendFailureRollsBackLead(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()

	f.store.FailOn("AppendHistory", errors.New("history table unavailable"))
	_, err := f.svc.ChangeLeadStatus(ctx, lead.ID, string(domain.StatusHot), "", nil)
	if !apperr.HasCode(err, apperr.CodePersistenceFailure) {
		t.Fatalf("expected persistence_failure, got %v", err)
	}

	stored, _ := f.store.GetLead(ctx, lead.ID)
	if stored.Status != domain.StatusSubmitted {
		t.Fatalf("expected rollback to Submitted, got %s", stored.Status)
	}
}

func TestRecordEnrollmentUsesFranchisePercentage(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(pct(12))

	res, err := f.svc.RecordEnrollment(context.Background(), lead.ID, 50000, nil)
	if err != nil {
		t.Fatalf("record enrollment: %v", err)
	}
	if res.Commission.CommissionAmount != 6000 {
		t.Fatalf("expected 6000, got %v", res.Commission.CommissionAmount)
	}
	if res.Commission.Status != commissiondomain.StatusPending {
		t.Fatalf("expected Pending, got %s", res.Commission.Status)
	}
	if res.Lead.Status != domain.StatusEnrolled || res.Lead.EnrollmentDate == nil {
		t.Fatalf("expected enrolled lead with date, got %+v", res.Lead)
	}
	if *res.Lead.AdmissionAmount != 50000 {
		t.Fatalf("expected admission amount 50000, got %v", *res.Lead.AdmissionAmount)
	}

	entries, _ := f.svc.History(context.Background(), lead.ID, false)
	if len(entries) != 1 || entries[0].Remarks != "Enrolled with admission amount: 50000.00" {
		t.Fatalf("unexpected history: %+v", entries)
	}
}

func TestRecordEnrollmentDefaultPercentage(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)

	res, err := f.svc.RecordEnrollment(context.Background(), lead.ID, 10000, nil)
	if err != nil {
		t.Fatalf("record enrollment: %v", err)
	}
	if res.Commission.CommissionAmount != 1000 || res.Commission.CommissionPercentage != 10 {
		t.Fatalf("expected 1000 at 10%%, got %v at %v", res.Commission.CommissionAmount, res.Commission.CommissionPercentage)
	}
}

func TestRecordEnrollmentRejectsInvalidAmountAndMissingLead(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()

	if _, err := f.svc.RecordEnrollment(ctx, lead.ID, 0, nil); !apperr.HasCode(err, apperr.CodeInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
	stored, _ := f.store.GetLead(ctx, lead.ID)
	if stored.Status != domain.StatusSubmitted {
		t.Fatal("expected lead untouched after invalid amount")
	}

	if _, err := f.svc.RecordEnrollment(ctx, uuid.New(), 100, nil); !apperr.HasCode(err, apperr.CodeLeadNotFound) {
		t.Fatalf("expected lead_not_found, got %v", err)
	}
}

func TestRecordEnrollmentRejectsAmountBeyondStoredPrecision(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()

	if _, err := f.svc.RecordEnrollment(ctx, lead.ID, 1e13, nil); !apperr.HasCode(err, apperr.CodeInvalidAmount) {
		t.Fatalf("expected invalid_amount, got %v", err)
	}
	stored, _ := f.store.GetLead(ctx, lead.ID)
	if stored.Status != domain.StatusSubmitted || stored.AdmissionAmount != nil {
		t.Fatalf("expected lead untouched, got %+v", stored)
	}
	if _, err := f.store.GetCommissionByLead(ctx, lead.ID); !errors.Is(err, commissiondomain.ErrCommissionNotFound) {
		t.Fatalf("expected no commission, got %v", err)
	}
}

func TestRecordEnrollmentRoundsAmountAndKeepsLeadRemarks(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	lead.Remarks = "prefers evening batch"
	f.store.SeedLead(lead)

	res, err := f.svc.RecordEnrollment(context.Background(), lead.ID, 1000.456, nil)
	if err != nil {
		t.Fatalf("record enrollment: %v", err)
	}
	if *res.Lead.AdmissionAmount != 1000.46 || res.Commission.AdmissionAmount != 1000.46 {
		t.Fatalf("expected 1000.46 on lead and commission, got %v and %v", *res.Lead.AdmissionAmount, res.Commission.AdmissionAmount)
	}
	if res.Commission.CommissionAmount != 100.05 {
		t.Fatalf("expected commission 100.05, got %v", res.Commission.CommissionAmount)
	}
	if res.Lead.Remarks != "prefers evening batch" {
		t.Fatalf("expected lead remarks kept, got %q", res.Lead.Remarks)
	}
	if res.Commission.Remarks != "Enrolled with admission amount: 1000.46" {
		t.Fatalf("unexpected commission remarks %q", res.Commission.Remarks)
	}
}

func TestRecordEnrollmentTwiceIsAlreadyEnrolled(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	ctx := context.Background()

	if _, err := f.svc.RecordEnrollment(ctx, lead.ID, 10000, nil); err != nil {
		t.Fatalf("first enrollment: %v", err)
	}
	_, err := f.svc.RecordEnrollment(ctx, lead.ID, 20000, nil)
	if !apperr.HasCode(err, apperr.CodeAlreadyEnrolled) {
		t.Fatalf("expected already_enrolled, got %v", err)
	}

	stored, _ := f.store.GetLead(ctx, lead.ID)
	if *stored.AdmissionAmount != 10000 {
		t.Fatalf("expected admission amount to stay 10000, got %v", *stored.AdmissionAmount)
	}
	entries, _ := f.svc.History(ctx, lead.ID, true)
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
}

func TestConcurrentRecordEnrollmentCreatesOneCommission(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(pct(15))
	ctx := context.Background()

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.RecordEnrollment(ctx, lead.ID, 40000, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.HasCode(err, apperr.CodeAlreadyEnrolled):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != callers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", callers-1, successes, conflicts)
	}
	if n := f.store.CountCommissions(lead.ID); n != 1 {
		t.Fatalf("expected exactly one commission, got %d", n)
	}
}

func TestChangeToEnrolledWithKnownAmountMaterializesCommission(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	amount := 25000.0
	lead.AdmissionAmount = &amount
	f.store.SeedLead(lead)
	ctx := context.Background()

	if _, err := f.svc.ChangeLeadStatus(ctx, lead.ID, string(domain.StatusEnrolled), "fees paid", nil); err != nil {
		t.Fatalf("change status: %v", err)
	}
	c, err := f.store.GetCommissionByLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("expected commission: %v", err)
	}
	if c.CommissionAmount != 2500 {
		t.Fatalf("expected 2500, got %v", c.CommissionAmount)
	}

	if _, err := f.svc.ChangeLeadStatus(ctx, lead.ID, string(domain.StatusEnrolled), "", nil); err != nil {
		t.Fatalf("re-apply enrolled: %v", err)
	}
	if n := f.store.CountCommissions(lead.ID); n != 1 {
		t.Fatalf("expected one commission, got %d", n)
	}
}

func TestSubscriberFailureDoesNotAffectStatusChange(t *testing.T) {
	f := newFixture(t)
	lead := f.seedLead(nil)
	delivered := make(chan events.LeadStatusChanged, 1)

	f.bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		panic("push transport exploded")
	}))
	f.bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		delivered <- event.(events.LeadStatusChanged)
		return errors.New("push transport failed")
	}))

	updated, err := f.svc.ChangeLeadStatus(context.Background(), lead.ID, string(domain.StatusHot), "", nil)
	if err != nil {
		t.Fatalf("expected success despite notification failure, got %v", err)
	}
	if updated.Status != domain.StatusHot {
		t.Fatalf("expected HOT, got %s", updated.Status)
	}

	select {
	case e := <-delivered:
		if e.PreviousStatus != string(domain.StatusSubmitted) || e.NewStatus != string(domain.StatusHot) {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("expected status change event")
	}
}

func TestSubmitLeadWritesInitialHistory(t *testing.T) {
	f := newFixture(t)
	franchiseID := uuid.New()
	actor := uuid.New()

	lead, err := f.svc.SubmitLead(context.Background(), SubmitInput{
		FranchiseID:  franchiseID,
		StudentName:  "  Meera  ",
		StudentPhone: "98765 43210",
		Remarks:      "walk-in",
	}, &actor)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if lead.Status != domain.StatusSubmitted || lead.StudentPhone != "+919876543210" || lead.StudentName != "Meera" {
		t.Fatalf("unexpected lead %+v", lead)
	}

	entries, _ := f.svc.History(context.Background(), lead.ID, true)
	if len(entries) != 1 || entries[0].PreviousStatus != nil || entries[0].NewStatus != domain.StatusSubmitted {
		t.Fatalf("unexpected initial history %+v", entries)
	}

	if _, err := f.svc.SubmitLead(context.Background(), SubmitInput{FranchiseID: franchiseID, StudentName: "x", StudentPhone: "12"}, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for bad phone, got %v", err)
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/apperr"
)

func TestAdvanceStampsPaidDateOnlyForPaid(t *testing.T) {
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	c := Commission{Status: StatusPending}

	approved, err := c.Advance("Approved", "checked", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.PaidDate != nil {
		t.Fatal("expected no paid date for Approved")
	}
	if approved.Remarks != "checked" {
		t.Fatalf("expected remarks to be set, got %q", approved.Remarks)
	}

	pending, err := c.Advance("Pending", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending.PaidDate != nil {
		t.Fatal("expected no paid date for Pending")
	}

	paid, err := approved.Advance("Paid", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.PaidDate == nil || !paid.PaidDate.Equal(now) {
		t.Fatalf("expected paid date %v, got %v", now, paid.PaidDate)
	}
	if paid.Remarks != "checked" {
		t.Fatalf("expected empty remarks to keep previous, got %q", paid.Remarks)
	}

	again, err := paid.Advance("Paid", "", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.PaidDate.Equal(now) {
		t.Fatalf("expected paid date to be kept, got %v", again.PaidDate)
	}
}

func TestAdvanceSkipsForwardButNotBackward(t *testing.T) {
	now := time.Now()

	paid, err := Commission{Status: StatusPending}.Advance("Paid", "", now)
	if err != nil {
		t.Fatalf("expected Pending -> Paid to be allowed: %v", err)
	}

	for _, back := range []string{"Approved", "Pending"} {
		if _, err := paid.Advance(back, "", now); !apperr.HasCode(err, apperr.CodeInvalidStatus) {
			t.Errorf("Paid -> %s: expected invalid_status, got %v", back, err)
		}
	}
}

func TestAdvanceRejectsUnknownStatus(t *testing.T) {
	_, err := Commission{Status: StatusPending}.Advance("paid", "", time.Now())
	if !apperr.HasCode(err, apperr.CodeInvalidStatus) {
		t.Fatalf("expected invalid_status, got %v", err)
	}
}

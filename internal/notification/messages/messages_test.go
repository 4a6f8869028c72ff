package messages

import (
	"testing"
)

func TestRenderCannedMessages(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name      string
		data      Data
		wantTitle string
		wantBody  string
	}{
		{
			name:      LeadStatusChanged,
			data:      Data{StudentName: "Ravi", NewStatus: "HOT"},
			wantTitle: "Lead Status Updated",
			wantBody:  "Ravi's lead status has been updated to HOT",
		},
		{
			name:      CommissionApproved,
			data:      Data{StudentName: "Ravi", CommissionAmount: 6000},
			wantTitle: "Commission Approved",
			wantBody:  "Your commission of ₹6000.00 for Ravi has been approved",
		},
		{
			name:      CommissionPaid,
			data:      Data{StudentName: "Ravi", CommissionAmount: 1234.5},
			wantTitle: "Commission Paid",
			wantBody:  "Your commission of ₹1234.50 for Ravi has been paid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body, err := c.Render(tt.name, tt.data)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, _, err := c.Render("missing", Data{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestParseRejectsBrokenTemplate(t *testing.T) {
	if _, err := Parse([]byte("bad:\n  title: \"{{.StudentName\"\n  body: x\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

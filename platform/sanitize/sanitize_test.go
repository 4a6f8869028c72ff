package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Called parent, visit on Monday", want: "Called parent, visit on Monday"},
		{name: "tags", in: "<b>HOT</b> lead", want: "HOT lead"},
		{name: "encoded script", in: "&lt;script&gt;alert(1)&lt;/script&gt;ok", want: "alert(1)ok"},
		{name: "spaces", in: "  Ravi \t  Kumar  ", want: "Ravi Kumar"},
		{name: "newlines kept", in: "line one\nline two", want: "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
	blank := " <br> "
	if TextPtr(&blank) != nil {
		t.Fatal("expected nil for blank input")
	}
	city := " Pune "
	if got := TextPtr(&city); got == nil || *got != "Pune" {
		t.Fatalf("unexpected %v", got)
	}
}

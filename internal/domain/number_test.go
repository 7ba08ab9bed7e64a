package domain

import (
	"testing"
	"time"
)

func TestDivisionCode3(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Legal", "LEG"},
		{"hr", "HRX"},
		{"IT", "ITX"},
		{"f", "FXX"},
		{"", "XXX"},
		{" ops ", "OPS"},
		{"FINANCE", "FIN"},
	}
	for _, tc := range cases {
		if got := DivisionCode3(tc.in); got != tc.want {
			t.Errorf("DivisionCode3(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocumentNumber(t *testing.T) {
	asOf := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	if got := DocumentNumber(NumberPrefixTicket, "Legal", asOf, 1); got != "TIC-LEG-26020001" {
		t.Errorf("ticket number = %q, want TIC-LEG-26020001", got)
	}
	if got := DocumentNumber(NumberPrefixContract, "Legal", asOf, 17); got != "CTR-LEG-26020017" {
		t.Errorf("contract number = %q, want CTR-LEG-26020017", got)
	}

	dec := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	if got := DocumentNumber(NumberPrefixTicket, "hr", dec, 10042); got != "TIC-HRX-251210042" {
		t.Errorf("overflow number = %q, want TIC-HRX-251210042", got)
	}
}

func TestSequencePeriod(t *testing.T) {
	if got := SequencePeriod(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)); got != "2611" {
		t.Errorf("SequencePeriod() = %q, want 2611", got)
	}
}

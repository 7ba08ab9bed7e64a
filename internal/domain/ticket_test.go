package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusOnProcess, true},
		{TicketStatusOpen, TicketStatusDone, false},
		{TicketStatusOpen, TicketStatusRejected, false},
		{TicketStatusOpen, TicketStatusClosed, false},
		{TicketStatusOnProcess, TicketStatusDone, true},
		{TicketStatusOnProcess, TicketStatusRejected, true},
		{TicketStatusOnProcess, TicketStatusClosed, true},
		{TicketStatusOnProcess, TicketStatusOpen, false},
		{TicketStatusDone, TicketStatusClosed, true},
		{TicketStatusDone, TicketStatusOnProcess, false},
		{TicketStatusRejected, TicketStatusOnProcess, false},
		{TicketStatusRejected, TicketStatusClosed, false},
		{TicketStatusClosed, TicketStatusOnProcess, false},
		{TicketStatusClosed, TicketStatusDone, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[TicketStatus]bool{
		TicketStatusDone:     true,
		TicketStatusRejected: true,
		TicketStatusClosed:   true,
	}
	all := []TicketStatus{TicketStatusOpen, TicketStatusOnProcess, TicketStatusDone, TicketStatusRejected, TicketStatusClosed}
	for _, status := range all {
		if status.Terminal() != terminal[status] {
			t.Errorf("%s.Terminal() = %v, want %v", status, status.Terminal(), terminal[status])
		}
	}
	if len(TerminalStatuses()) != 3 {
		t.Errorf("TerminalStatuses() has %d entries, want 3", len(TerminalStatuses()))
	}
}

func TestDocumentTypeClassification(t *testing.T) {
	contractable := []DocumentType{DocTypeAgreement, DocTypeNDA, DocTypePowerOfAttorney}
	for _, dt := range contractable {
		if !dt.Contractable() {
			t.Errorf("%s should be contractable", dt)
		}
		if dt.ClosesWithoutContract() {
			t.Errorf("%s should not close without a contract", dt)
		}
	}

	letters := []DocumentType{DocTypeLegalOpinion, DocTypeStatementLetter, DocTypeOtherLetter}
	for _, dt := range letters {
		if dt.Contractable() {
			t.Errorf("%s should not be contractable", dt)
		}
		if !dt.ClosesWithoutContract() {
			t.Errorf("%s should close without a contract", dt)
		}
	}

	if !DocTypeAgreement.RequiresChecklist() {
		t.Error("agreement should require the completion checklist")
	}
	if DocTypeNDA.RequiresChecklist() {
		t.Error("NDA should not require the completion checklist")
	}
	if !DocTypeAgreement.RequiresAgreementTerms() || !DocTypeNDA.RequiresAgreementTerms() {
		t.Error("agreement and NDA should require agreement terms")
	}
	if DocTypePowerOfAttorney.RequiresAgreementTerms() {
		t.Error("power of attorney should not require agreement terms")
	}

	if ValidDocumentType(DocumentType("MEMO")) {
		t.Error("unknown document type accepted")
	}
	if !ValidDocumentType(DocTypeOtherLetter) {
		t.Error("known document type rejected")
	}
}

func TestContractDates(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, 1, 14, 0, 0, 0, 0, time.UTC)

	agreement := &Ticket{
		DocumentType: DocTypeAgreement,
		Agreement:    &AgreementTerms{CounterpartName: "Acme", StartDate: start, EndDate: &end},
	}
	gotStart, gotEnd := agreement.ContractDates()
	if !gotStart.Equal(start) || gotEnd == nil || !gotEnd.Equal(end) {
		t.Errorf("agreement dates = (%v, %v), want (%v, %v)", gotStart, gotEnd, start, end)
	}

	poa := &Ticket{
		DocumentType: DocTypePowerOfAttorney,
		Attorney:     &AttorneyTerms{Grantor: "A", Grantee: "B", StartDate: start, EndDate: end},
	}
	gotStart, gotEnd = poa.ContractDates()
	if !gotStart.Equal(start) || gotEnd == nil || !gotEnd.Equal(end) {
		t.Errorf("attorney dates = (%v, %v), want (%v, %v)", gotStart, gotEnd, start, end)
	}

	autoRenew := &Ticket{
		DocumentType: DocTypeNDA,
		Agreement:    &AgreementTerms{CounterpartName: "Acme", StartDate: start, IsAutoRenewal: true},
	}
	gotStart, gotEnd = autoRenew.ContractDates()
	if !gotStart.Equal(start) || gotEnd != nil {
		t.Errorf("auto-renewal dates = (%v, %v), want (%v, nil)", gotStart, gotEnd, start)
	}
	if !autoRenew.AutoRenewing() {
		t.Error("AutoRenewing() = false for auto-renewal agreement")
	}
}

package refund

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionState is the lifecycle state of a refund session
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionLoading    SessionState = "loading"
	SessionReady      SessionState = "ready"
	SessionValidating SessionState = "validating"
	SessionSubmitting SessionState = "submitting"
	SessionSucceeded  SessionState = "succeeded"
	SessionFailed     SessionState = "failed"
	SessionClosed     SessionState = "closed"
)

// Section names a block of data loaded when a session opens
type Section string

const (
	SectionTicket         Section = "ticket"
	SectionOrder          Section = "order"
	SectionBankAccounts   Section = "bank_accounts"
	SectionSupportedBanks Section = "supported_banks"
)

// Session is the view-model behind the refund dialog of one support ticket.
// It is not safe for concurrent use; callers serialise access.
type Session struct {
	ID       string
	VendorID string
	TicketID int64
	OrderID  int64
	State    SessionState

	Order          *Order
	BankAccounts   []BankAccount
	SupportedBanks []SupportedBank
	SectionErrors  map[Section]string

	Forms []DetailForm

	RefundAmount     decimal.Decimal
	CustomAmount     bool
	BankAccountID    int64
	ManualMode       bool
	GatewayPaymentID string

	LastValidation *ValidationError
	LastResult     *SubmissionResult

	CreatedAt time.Time
	UpdatedAt time.Time

	policy Policy
}

// NewSession creates an idle session for a ticket
func NewSession(id, vendorID string, ticketID int64, policy Policy, now time.Time) *Session {
	return &Session{
		ID:            id,
		VendorID:      vendorID,
		TicketID:      ticketID,
		State:         SessionIdle,
		SectionErrors: make(map[Section]string),
		Forms:         []DetailForm{},
		RefundAmount:  decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
		policy:        policy,
	}
}

// Policy returns the rules the session was opened with
func (s *Session) Policy() Policy {
	return s.policy
}

// BeginLoading moves an idle session to loading for the given order
func (s *Session) BeginLoading(orderID int64, now time.Time) error {
	if s.State != SessionIdle {
		return ErrSessionBusy
	}
	s.OrderID = orderID
	s.State = SessionLoading
	s.UpdatedAt = now
	return nil
}

// SetOrder stores the loaded order and builds one form per order line
func (s *Session) SetOrder(order *Order, now time.Time) {
	s.Order = order
	s.Forms = make([]DetailForm, 0, len(order.Details))
	for _, d := range order.Details {
		s.Forms = append(s.Forms, NewDetailForm(d, s.policy))
	}
	delete(s.SectionErrors, SectionOrder)
	s.recalculate()
	s.UpdatedAt = now
}

// SetBankAccounts stores the vendor's bank accounts, preselecting the default one
func (s *Session) SetBankAccounts(accounts []BankAccount, now time.Time) {
	s.BankAccounts = accounts
	delete(s.SectionErrors, SectionBankAccounts)
	if s.BankAccountID == 0 {
		for _, a := range accounts {
			if a.IsDefault {
				s.BankAccountID = a.ID
				break
			}
		}
	}
	s.UpdatedAt = now
}

// SetSupportedBanks stores the gateway's bank directory
func (s *Session) SetSupportedBanks(banks []SupportedBank, now time.Time) {
	s.SupportedBanks = banks
	delete(s.SectionErrors, SectionSupportedBanks)
	s.UpdatedAt = now
}

// FailSection records a load error for one section without affecting others
func (s *Session) FailSection(section Section, message string, now time.Time) {
	s.SectionErrors[section] = message
	s.UpdatedAt = now
}

// MarkReady ends loading
func (s *Session) MarkReady(now time.Time) {
	if s.State == SessionLoading {
		s.State = SessionReady
	}
	s.UpdatedAt = now
}

// IsClosed reports whether the session was closed
func (s *Session) IsClosed() bool {
	return s.State == SessionClosed
}

// Close ends the session; later updates are rejected
func (s *Session) Close(now time.Time) {
	s.State = SessionClosed
	s.UpdatedAt = now
}

// Line returns a copy of the form for an order line
func (s *Session) Line(orderDetailID int64) (DetailForm, error) {
	i := s.lineIndex(orderDetailID)
	if i < 0 {
		return DetailForm{}, ErrLineNotFound
	}
	return s.Forms[i].clone(), nil
}

// ToggleLine includes or excludes an order line
func (s *Session) ToggleLine(orderDetailID int64, include bool, now time.Time) error {
	return s.editLine(orderDetailID, now, true, func(f DetailForm) (DetailForm, error) {
		return f.Toggle(include), nil
	})
}

// SetLineQuantity changes the quantity of an included line
func (s *Session) SetLineQuantity(orderDetailID int64, quantity int, now time.Time) error {
	return s.editLine(orderDetailID, now, true, func(f DetailForm) (DetailForm, error) {
		if !f.Include {
			return f, ErrLineNotIncluded
		}
		return f.WithQuantity(quantity), nil
	})
}

// SetLineSerial changes one serial number of an included line
func (s *Session) SetLineSerial(orderDetailID int64, index int, serial string, now time.Time) error {
	return s.editLine(orderDetailID, now, true, func(f DetailForm) (DetailForm, error) {
		if !f.Include {
			return f, ErrLineNotIncluded
		}
		return f.WithSerial(index, serial)
	})
}

// SetLineLot changes the lot number of a line. It does not touch the amount.
func (s *Session) SetLineLot(orderDetailID int64, lot string, now time.Time) error {
	return s.editLine(orderDetailID, now, false, func(f DetailForm) (DetailForm, error) {
		return f.WithLot(lot), nil
	})
}

// BeginIdentityFetch flags a line's identity numbers as loading
func (s *Session) BeginIdentityFetch(orderDetailID int64, now time.Time) error {
	return s.updateIdentity(orderDetailID, now, func(f DetailForm) DetailForm {
		return f.BeginIdentityFetch()
	})
}

// ApplyIdentityNumbers stores identity records fetched for a line
func (s *Session) ApplyIdentityNumbers(orderDetailID int64, items []IdentityNumberItem, now time.Time) error {
	return s.updateIdentity(orderDetailID, now, func(f DetailForm) DetailForm {
		return f.ApplyIdentityNumbers(items, s.policy)
	})
}

// FailIdentityNumbers records a failed identity fetch for a line
func (s *Session) FailIdentityNumbers(orderDetailID int64, message string, now time.Time) error {
	return s.updateIdentity(orderDetailID, now, func(f DetailForm) DetailForm {
		return f.FailIdentityNumbers(message)
	})
}

// SetRefundAmount records a manually entered amount and latches it
func (s *Session) SetRefundAmount(amount decimal.Decimal, now time.Time) error {
	if err := s.beginEdit(now); err != nil {
		return err
	}
	s.RefundAmount = amount
	s.CustomAmount = true
	return nil
}

// ResetRefundAmount drops a manual amount and tracks the computed total again
func (s *Session) ResetRefundAmount(now time.Time) error {
	if err := s.beginEdit(now); err != nil {
		return err
	}
	s.CustomAmount = false
	s.recalculate()
	return nil
}

// SelectBankAccount picks the account that receives the refund.
// Zero clears the selection.
func (s *Session) SelectBankAccount(accountID int64, now time.Time) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	if accountID != 0 && !s.hasBankAccount(accountID) {
		return ErrBankAccountNotFound
	}
	s.touch(now)
	s.BankAccountID = accountID
	return nil
}

// SetPaymentMode switches between gateway and manual refunds
func (s *Session) SetPaymentMode(manual bool, gatewayPaymentID string, now time.Time) error {
	if err := s.beginEdit(now); err != nil {
		return err
	}
	s.ManualMode = manual
	if manual {
		s.GatewayPaymentID = gatewayPaymentID
	} else {
		s.GatewayPaymentID = ""
	}
	return nil
}

// AutoRefundAmount is the computed total of the current selection
func (s *Session) AutoRefundAmount() decimal.Decimal {
	return AutoRefundAmount(s.Forms)
}

// RefundEligible reports whether the loaded order can still be refunded
func (s *Session) RefundEligible(now time.Time) bool {
	return IsRefundEligible(s.Order, now, s.policy)
}

// Validate runs the submission rules without submitting
func (s *Session) Validate(now time.Time) (*ValidationError, error) {
	if err := s.ensureEditable(); err != nil {
		return nil, err
	}
	s.touch(now)
	s.State = SessionValidating
	verr := Validate(s.validationInput(now), s.policy)
	s.LastValidation = verr
	s.State = SessionReady
	return verr, nil
}

// BeginSubmit validates the session and, when valid, moves it to submitting
// and returns the upstream payload.
func (s *Session) BeginSubmit(now time.Time) (*Payload, *ValidationError, error) {
	verr, err := s.Validate(now)
	if err != nil || verr != nil {
		return nil, verr, err
	}
	payload := BuildPayload(PayloadInput{
		Forms:            s.Forms,
		RefundAmount:     s.RefundAmount,
		BankAccountID:    s.BankAccountID,
		ManualMode:       s.ManualMode,
		GatewayPaymentID: s.GatewayPaymentID,
	})
	s.LastResult = nil
	s.State = SessionSubmitting
	return &payload, nil, nil
}

// CompleteSubmission applies the upstream answer. Success resets every line
// and the payment-mode fields; failure keeps the forms and surfaces the
// first server error.
func (s *Session) CompleteSubmission(reply UpstreamReply, now time.Time) SubmissionResult {
	s.UpdatedAt = now
	if !reply.Accepted {
		s.LastResult = &SubmissionResult{Outcome: OutcomeFailed, Message: FailureMessage(reply.Errors)}
		if s.State != SessionClosed {
			s.State = SessionFailed
		}
		return *s.LastResult
	}

	for i := range s.Forms {
		s.Forms[i] = s.Forms[i].ResetSelection()
	}
	s.ManualMode = false
	s.GatewayPaymentID = ""
	s.CustomAmount = false
	s.recalculate()
	s.LastValidation = nil
	s.LastResult = &SubmissionResult{Outcome: OutcomeSucceeded, Message: SubmissionSucceededMessage}
	if s.State != SessionClosed {
		s.State = SessionSucceeded
	}
	return *s.LastResult
}

// Snapshot returns a deep copy safe to read without the owner's lock
func (s *Session) Snapshot() *Session {
	cp := *s
	cp.Forms = make([]DetailForm, len(s.Forms))
	for i, f := range s.Forms {
		cp.Forms[i] = f.clone()
	}
	cp.BankAccounts = append([]BankAccount(nil), s.BankAccounts...)
	cp.SupportedBanks = append([]SupportedBank(nil), s.SupportedBanks...)
	cp.SectionErrors = make(map[Section]string, len(s.SectionErrors))
	for k, v := range s.SectionErrors {
		cp.SectionErrors[k] = v
	}
	if s.LastValidation != nil {
		v := *s.LastValidation
		cp.LastValidation = &v
	}
	if s.LastResult != nil {
		r := *s.LastResult
		cp.LastResult = &r
	}
	return &cp
}

func (s *Session) validationInput(now time.Time) ValidationInput {
	return ValidationInput{
		Order:            s.Order,
		Forms:            s.Forms,
		RefundAmount:     s.RefundAmount,
		BankAccountID:    s.BankAccountID,
		ManualMode:       s.ManualMode,
		GatewayPaymentID: s.GatewayPaymentID,
		Now:              now,
	}
}

// editLine applies a reducer to one line. Selection edits (quantity, serial,
// toggle) drop a manual amount unless the policy keeps it.
func (s *Session) editLine(orderDetailID int64, now time.Time, selectionEdit bool, fn func(DetailForm) (DetailForm, error)) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	i := s.lineIndex(orderDetailID)
	if i < 0 {
		return ErrLineNotFound
	}
	updated, err := fn(s.Forms[i])
	if err != nil {
		return err
	}
	s.touch(now)
	s.Forms[i] = updated
	if selectionEdit {
		if !s.policy.KeepCustomAmountOnLineEdit {
			s.CustomAmount = false
		}
		s.recalculate()
	}
	return nil
}

func (s *Session) updateIdentity(orderDetailID int64, now time.Time, fn func(DetailForm) DetailForm) error {
	if s.State == SessionClosed {
		return ErrSessionClosed
	}
	i := s.lineIndex(orderDetailID)
	if i < 0 {
		return ErrLineNotFound
	}
	s.Forms[i] = fn(s.Forms[i])
	s.UpdatedAt = now
	return nil
}

func (s *Session) beginEdit(now time.Time) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	s.touch(now)
	return nil
}

func (s *Session) ensureEditable() error {
	switch s.State {
	case SessionReady, SessionSucceeded, SessionFailed:
		return nil
	case SessionClosed:
		return ErrSessionClosed
	case SessionValidating, SessionSubmitting:
		return ErrSessionBusy
	default:
		return ErrSessionNotReady
	}
}

// touch records operator activity; a finished submission returns to ready
func (s *Session) touch(now time.Time) {
	if s.State == SessionSucceeded || s.State == SessionFailed {
		s.State = SessionReady
	}
	s.UpdatedAt = now
}

func (s *Session) recalculate() {
	if !s.CustomAmount {
		s.RefundAmount = s.AutoRefundAmount()
	}
}

func (s *Session) lineIndex(orderDetailID int64) int {
	for i := range s.Forms {
		if s.Forms[i].OrderDetailID == orderDetailID {
			return i
		}
	}
	return -1
}

func (s *Session) hasBankAccount(id int64) bool {
	for _, a := range s.BankAccounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

package refund

import (
	"context"
	"time"

	"github.com/vendorhub/console/internal/domain/refund"
)

// Backend is the upstream order, ticket and refund API
type Backend interface {
	GetTicket(ctx context.Context, ticketID int64) (*refund.Ticket, error)
	GetOrder(ctx context.Context, orderID int64) (*refund.Order, error)
	GetExportedIdentityNumbers(ctx context.Context, orderDetailID int64) ([]refund.IdentityNumberItem, error)
	GetVendorBankAccounts(ctx context.Context, userID string) ([]refund.BankAccount, error)
	GetSupportedBanks(ctx context.Context) ([]refund.SupportedBank, error)
	SubmitRefund(ctx context.Context, ticketID int64, payload refund.Payload) (refund.UpstreamReply, error)
}

// Metrics records refund workflow measurements
type Metrics interface {
	SessionOpened(ctx context.Context)
	SubmissionCompleted(ctx context.Context, outcome refund.SubmissionOutcome, took time.Duration)
	ValidationFailed(ctx context.Context, rule refund.ValidationRule)
	IdentityFetched(ctx context.Context, ok bool)
}

type nopMetrics struct{}

func (nopMetrics) SessionOpened(context.Context) {}
func (nopMetrics) SubmissionCompleted(context.Context, refund.SubmissionOutcome, time.Duration) {}
func (nopMetrics) ValidationFailed(context.Context, refund.ValidationRule) {}
func (nopMetrics) IdentityFetched(context.Context, bool) {}

package refund

import "github.com/vendorhub/console/internal/domain/shared"

// Refund workflow errors
var (
	ErrLineNotFound          = shared.NewDomainError("REFUND_LINE_NOT_FOUND", "Order line is not part of this refund session")
	ErrLineNotIncluded       = shared.NewDomainError("REFUND_LINE_NOT_INCLUDED", "Order line is not selected for refund")
	ErrSerialIndexOutOfRange = shared.NewDomainError("REFUND_SERIAL_INDEX_OUT_OF_RANGE", "Serial number index is out of range")
	ErrBankAccountNotFound   = shared.NewDomainError("REFUND_BANK_ACCOUNT_NOT_FOUND", "Bank account does not belong to this vendor")
	ErrTicketNotFound        = shared.NewDomainError("REFUND_TICKET_NOT_FOUND", "Support ticket not found")
	ErrOrderReferenceMissing = shared.NewDomainError("REFUND_ORDER_REFERENCE_MISSING", "Ticket does not reference an order")
	ErrSessionNotFound       = shared.NewDomainError("REFUND_SESSION_NOT_FOUND", "Refund session not found or expired")
	ErrSessionClosed         = shared.NewDomainError("REFUND_SESSION_CLOSED", "Refund session is closed")
	ErrSessionNotReady       = shared.NewDomainError("REFUND_SESSION_NOT_READY", "Refund session is still loading")
	ErrSessionBusy           = shared.NewDomainError("REFUND_SESSION_BUSY", "Refund session is being validated or submitted")
	ErrSubmissionInProgress  = shared.NewDomainError("REFUND_SUBMISSION_IN_PROGRESS", "A refund for this ticket is already being submitted")
)

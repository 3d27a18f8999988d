package refund

import "strings"

// Operator-facing submission messages
const (
	SubmissionSucceededMessage = "Yêu cầu hoàn tiền đã được xử lý thành công."
	SubmissionFallbackMessage  = "Có lỗi xảy ra khi xử lý yêu cầu hoàn tiền. Vui lòng thử lại sau."
)

// SubmissionOutcome is the result of one submit attempt
type SubmissionOutcome string

const (
	OutcomeSucceeded SubmissionOutcome = "succeeded"
	OutcomeFailed    SubmissionOutcome = "failed"
)

// UpstreamReply is what the refund API answered
type UpstreamReply struct {
	Accepted bool
	Errors   []string
}

// SubmissionResult is the outcome shown to the operator
type SubmissionResult struct {
	Outcome SubmissionOutcome `json:"outcome"`
	Message string            `json:"message"`
}

// FailureMessage returns the first server-reported error or the generic fallback
func FailureMessage(errs []string) string {
	for _, e := range errs {
		if msg := strings.TrimSpace(e); msg != "" {
			return msg
		}
	}
	return SubmissionFallbackMessage
}

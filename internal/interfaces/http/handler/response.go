package handler

import (
	refundapp "github.com/vendorhub/console/internal/application/refund"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
)

// Envelope types below only describe responses in the OpenAPI document;
// handlers write dto.Response.

// APIResponse is a successful envelope carrying T in data
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ErrorResponse is a failed envelope without data
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// RefundRejectedResponse is the 422 envelope of a form that failed
// validation. Data holds the session so the operator can correct it.
type RefundRejectedResponse struct {
	Success bool                   `json:"success" example:"false"`
	Data    *refundapp.SessionView `json:"data"`
	Error   *dto.ErrorInfo         `json:"error"`
}

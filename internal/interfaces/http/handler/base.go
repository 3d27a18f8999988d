package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
	"github.com/vendorhub/console/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getVendorID returns the vendor owning the caller's sessions
func getVendorID(c *gin.Context) (string, error) {
	vendorID := middleware.GetJWTVendorID(c)
	if vendorID == "" {
		return "", shared.ErrUnauthorized
	}
	return vendorID, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// RefundValidationFailed sends a 422 naming the violated rule. data is the
// session view so the console can redraw the form next to the message.
func (h *BaseHandler) RefundValidationFailed(c *gin.Context, verr *refund.ValidationError, data any) {
	resp := dto.NewValidationErrorResponse(dto.ErrCodeRefundValidation, verr.Message, []dto.ValidationDetail{{
		Rule:          string(verr.Rule),
		Message:       verr.Message,
		OrderDetailID: verr.OrderDetailID,
	}})
	resp.Error.RequestID = middleware.GetRequestID(c)
	resp.Data = data
	c.JSON(http.StatusUnprocessableEntity, resp)
}

// HandleError maps err to a response. Domain errors keep their message;
// anything else is logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var verr *refund.ValidationError
	if errors.As(err, &verr) {
		h.RefundValidationFailed(c, verr, nil)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "The request took too long, please retry")
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err), zap.String("route", c.FullPath()))
	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}

// bindJSON binds and validates the body, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindURI binds and validates path parameters, answering 400 on failure
func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

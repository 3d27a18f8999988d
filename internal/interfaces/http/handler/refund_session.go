package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	refundapp "github.com/vendorhub/console/internal/application/refund"
	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
)

// RefundSessionService is the refund workflow as seen by the HTTP layer
type RefundSessionService interface {
	OpenSession(ctx context.Context, vendorID string, ticketID int64) (*refundapp.SessionView, error)
	GetSession(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error)
	AwaitIdentityNumbers(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error)
	RefreshIdentityNumbers(ctx context.Context, vendorID, sessionID string, orderDetailID int64) (*refundapp.SessionView, error)
	ToggleLine(ctx context.Context, vendorID, sessionID string, orderDetailID int64, include bool) (*refundapp.SessionView, error)
	SetLineQuantity(ctx context.Context, vendorID, sessionID string, orderDetailID int64, quantity int) (*refundapp.SessionView, error)
	SetLineSerial(ctx context.Context, vendorID, sessionID string, orderDetailID int64, index int, serial string) (*refundapp.SessionView, error)
	SetLineLot(ctx context.Context, vendorID, sessionID string, orderDetailID int64, lot string) (*refundapp.SessionView, error)
	LotAvailability(ctx context.Context, vendorID, sessionID string, orderDetailID int64) ([]refund.LotQuantity, error)
	SetRefundAmount(ctx context.Context, vendorID, sessionID string, amount decimal.Decimal) (*refundapp.SessionView, error)
	ResetRefundAmount(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error)
	UpdatePayment(ctx context.Context, vendorID, sessionID string, in refundapp.PaymentInput) (*refundapp.SessionView, error)
	Validate(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error)
	Submit(ctx context.Context, vendorID, sessionID string) (*refundapp.SubmitResult, error)
	CloseSession(ctx context.Context, vendorID, sessionID string) error
	ListSubmissions(ctx context.Context, vendorID string, ticketID int64) ([]refundapp.SubmissionView, error)
}

// RefundSessionHandler serves the refund dialog of the support ticket page
type RefundSessionHandler struct {
	BaseHandler
	service RefundSessionService
}

// NewRefundSessionHandler creates a new RefundSessionHandler
func NewRefundSessionHandler(service RefundSessionService) *RefundSessionHandler {
	return &RefundSessionHandler{service: service}
}

// RegisterRoutes mounts the refund routes on an authenticated group
func (h *RefundSessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tickets := rg.Group("/support-tickets/:ticketId")
	tickets.POST("/refund-sessions", h.Open)
	tickets.GET("/refund-submissions", h.ListSubmissions)

	sessions := rg.Group("/refund-sessions/:sessionId", tagSessionLogger)
	sessions.GET("", h.Get)
	sessions.DELETE("", h.Close)
	sessions.PUT("/amount", h.SetAmount)
	sessions.DELETE("/amount", h.ResetAmount)
	sessions.PUT("/payment", h.UpdatePayment)
	sessions.POST("/validate", h.Validate)
	sessions.POST("/submit", h.Submit)

	lines := sessions.Group("/lines/:orderDetailId")
	lines.POST("/toggle", h.ToggleLine)
	lines.PUT("/quantity", h.SetQuantity)
	lines.PUT("/serials/:index", h.SetSerial)
	lines.PUT("/lot", h.SetLot)
	lines.GET("/lots", h.LotAvailability)
	lines.POST("/identity-numbers/refresh", h.RefreshIdentityNumbers)
}

// tagSessionLogger adds the session id to the request logger
func tagSessionLogger(c *gin.Context) {
	ctx := c.Request.Context()
	ctx, _ = logger.WithSessionID(ctx, logger.FromContext(ctx), c.Param("sessionId"))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// sessionAction resolves the caller's vendor and the session id, answering
// the request itself when either is missing
func (h *RefundSessionHandler) sessionAction(c *gin.Context) (vendorID, sessionID string, ok bool) {
	vendorID, err := getVendorID(c)
	if err != nil {
		h.HandleError(c, err)
		return "", "", false
	}
	var uri dto.SessionURI
	if !bindURI(c, &uri) {
		return "", "", false
	}
	return vendorID, uri.SessionID, true
}

func (h *RefundSessionHandler) lineAction(c *gin.Context) (vendorID string, uri dto.LineURI, ok bool) {
	vendorID, err := getVendorID(c)
	if err != nil {
		h.HandleError(c, err)
		return "", uri, false
	}
	if !bindURI(c, &uri) {
		return "", uri, false
	}
	return vendorID, uri, true
}

func (h *RefundSessionHandler) respondView(c *gin.Context, view *refundapp.SessionView, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Open godoc
// @ID           openRefundSession
// @Summary      Open a refund session
// @Description  Loads the ticket's order, the vendor's bank accounts and the supported banks. Sections that fail to load are reported in section_errors.
// @Tags         refund-sessions
// @Produce      json
// @Param        ticketId path int true "Support ticket ID"
// @Success      201 {object} APIResponse[refundapp.SessionView]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /support-tickets/{ticketId}/refund-sessions [post]
func (h *RefundSessionHandler) Open(c *gin.Context) {
	vendorID, err := getVendorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var uri dto.TicketURI
	if !bindURI(c, &uri) {
		return
	}

	view, err := h.service.OpenSession(c.Request.Context(), vendorID, uri.TicketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Get godoc
// @ID           getRefundSession
// @Summary      Get a refund session
// @Description  Returns the form with the computed refund amount, lots and eligibility. With wait=true the call blocks until identity numbers have loaded.
// @Tags         refund-sessions
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        wait query bool false "Wait for identity numbers"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      404 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId} [get]
func (h *RefundSessionHandler) Get(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	var query dto.SessionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "wait must be a boolean")
		return
	}

	if query.Wait {
		view, err := h.service.AwaitIdentityNumbers(c.Request.Context(), vendorID, sessionID)
		h.respondView(c, view, err)
		return
	}
	view, err := h.service.GetSession(c.Request.Context(), vendorID, sessionID)
	h.respondView(c, view, err)
}

// Close godoc
// @ID           closeRefundSession
// @Summary      Close a refund session
// @Description  Discards the session and cancels pending identity number fetches
// @Tags         refund-sessions
// @Param        sessionId path string true "Refund session ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId} [delete]
func (h *RefundSessionHandler) Close(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	if err := h.service.CloseSession(c.Request.Context(), vendorID, sessionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ToggleLine godoc
// @ID           toggleRefundLine
// @Summary      Select or deselect an order line
// @Tags         refund-sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        orderDetailId path int true "Order line ID"
// @Param        request body dto.ToggleLineRequest true "Selection"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/lines/{orderDetailId}/toggle [post]
func (h *RefundSessionHandler) ToggleLine(c *gin.Context) {
	vendorID, uri, ok := h.lineAction(c)
	if !ok {
		return
	}
	var req dto.ToggleLineRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.ToggleLine(c.Request.Context(), vendorID, uri.SessionID, uri.OrderDetailID, *req.Include)
	h.respondView(c, view, err)
}

// SetQuantity godoc
// @ID           setRefundLineQuantity
// @Summary      Set the returned quantity of a line
// @Description  The quantity is clamped to the purchased quantity and the serial slots are resized to match
// @Tags         refund-sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        orderDetailId path int true "Order line ID"
// @Param        request body dto.SetQuantityRequest true "Quantity"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/lines/{orderDetailId}/quantity [put]
func (h *RefundSessionHandler) SetQuantity(c *gin.Context) {
	vendorID, uri, ok := h.lineAction(c)
	if !ok {
		return
	}
	var req dto.SetQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetLineQuantity(c.Request.Context(), vendorID, uri.SessionID, uri.OrderDetailID, *req.Quantity)
	h.respondView(c, view, err)
}

// SetSerial godoc
// @ID           setRefundLineSerial
// @Summary      Set one serial number of a line
// @Tags         refund-sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        orderDetailId path int true "Order line ID"
// @Param        index path int true "Serial slot, zero based"
// @Param        request body dto.SetSerialRequest true "Serial number"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/lines/{orderDetailId}/serials/{index} [put]
func (h *RefundSessionHandler) SetSerial(c *gin.Context) {
	vendorID, err := getVendorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var uri dto.SerialURI
	if !bindURI(c, &uri) {
		return
	}
	var req dto.SetSerialRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetLineSerial(c.Request.Context(), vendorID, uri.SessionID, uri.OrderDetailID, uri.Index, req.SerialNumber)
	h.respondView(c, view, err)
}

// SetLot godoc
// @ID           setRefundLineLot
// @Summary      Set the lot number of a line
// @Tags         refund-sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        orderDetailId path int true "Order line ID"
// @Param        request body dto.SetLotRequest true "Lot number"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/lines/{orderDetailId}/lot [put]
func (h *RefundSessionHandler) SetLot(c *gin.Context) {
	vendorID, uri, ok := h.lineAction(c)
	if !ok {
		return
	}
	var req dto.SetLotRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetLineLot(c.Request.Context(), vendorID, uri.SessionID, uri.OrderDetailID, req.LotNumber)
	h.respondView(c, view, err)
}

// LotAvailability godoc
// @ID           listRefundLineLots
// @Summary      List lots exported against a line
// @Description  Each lot with the quantity still available for return, ordered by lot number
// @Tags         refund-sessions
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        orderDetailId path int true "Order line ID"
// @Success      200 {object} APIResponse[[]refund.LotQuantity]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/lines/{orderDetailId}/lots [get]
func (h *RefundSessionHandler) LotAvailability(c *gin.Context) {
	vendorID, uri, ok := h.lineAction(c)
	if !ok {
		return
	}
	lots, err := h.service.LotAvailability(c.Request.Context(), vendorID, uri.SessionID, uri.OrderDetailID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// RefreshIdentityNumbers godoc
// @ID           refreshRefundLineIdentityNumbers
// @Summary      Refetch a line's lot and serial numbers
// @Tags         refund-sessions
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        orderDetailId path int true "Order line ID"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/lines/{orderDetailId}/identity-numbers/refresh [post]
func (h *RefundSessionHandler) RefreshIdentityNumbers(c *gin.Context) {
	vendorID, uri, ok := h.lineAction(c)
	if !ok {
		return
	}
	view, err := h.service.RefreshIdentityNumbers(c.Request.Context(), vendorID, uri.SessionID, uri.OrderDetailID)
	h.respondView(c, view, err)
}

// SetAmount godoc
// @ID           setRefundAmount
// @Summary      Override the refund amount
// @Description  The custom amount sticks until it is reset or, unless configured otherwise, the selection changes
// @Tags         refund-sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        request body dto.SetAmountRequest true "Amount"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/amount [put]
func (h *RefundSessionHandler) SetAmount(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	var req dto.SetAmountRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetRefundAmount(c.Request.Context(), vendorID, sessionID, *req.Amount)
	h.respondView(c, view, err)
}

// ResetAmount godoc
// @ID           resetRefundAmount
// @Summary      Return to the computed refund amount
// @Tags         refund-sessions
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/amount [delete]
func (h *RefundSessionHandler) ResetAmount(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	view, err := h.service.ResetRefundAmount(c.Request.Context(), vendorID, sessionID)
	h.respondView(c, view, err)
}

// UpdatePayment godoc
// @ID           updateRefundPayment
// @Summary      Choose the bank account and payment mode
// @Tags         refund-sessions
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Param        request body dto.UpdatePaymentRequest true "Payment"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/payment [put]
func (h *RefundSessionHandler) UpdatePayment(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.UpdatePayment(c.Request.Context(), vendorID, sessionID, refundapp.PaymentInput{
		BankAccountID:    req.BankAccountID,
		ManualMode:       req.ManualMode,
		GatewayPaymentID: req.GatewayPaymentID,
	})
	h.respondView(c, view, err)
}

// Validate godoc
// @ID           validateRefundSession
// @Summary      Check the refund request without submitting
// @Description  A broken rule answers 422 with the rule in error.details and the session in data
// @Tags         refund-sessions
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Success      200 {object} APIResponse[refundapp.SessionView]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} RefundRejectedResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/validate [post]
func (h *RefundSessionHandler) Validate(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	view, err := h.service.Validate(c.Request.Context(), vendorID, sessionID)
	var verr *refund.ValidationError
	if errors.As(err, &verr) {
		h.RefundValidationFailed(c, verr, view)
		return
	}
	h.respondView(c, view, err)
}

// Submit godoc
// @ID           submitRefund
// @Summary      Validate and submit the refund
// @Description  Both outcomes of the marketplace call answer 200; check outcome. ticket_refresh_required is set after a successful refund.
// @Tags         refund-sessions
// @Produce      json
// @Param        sessionId path string true "Refund session ID"
// @Success      200 {object} APIResponse[refundapp.SubmitResult]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} RefundRejectedResponse
// @Security     BearerAuth
// @Router       /refund-sessions/{sessionId}/submit [post]
func (h *RefundSessionHandler) Submit(c *gin.Context) {
	vendorID, sessionID, ok := h.sessionAction(c)
	if !ok {
		return
	}
	result, err := h.service.Submit(c.Request.Context(), vendorID, sessionID)
	var verr *refund.ValidationError
	if errors.As(err, &verr) {
		var view *refundapp.SessionView
		if result != nil {
			view = result.Session
		}
		h.RefundValidationFailed(c, verr, view)
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListSubmissions godoc
// @ID           listRefundSubmissions
// @Summary      Refund submissions of a ticket
// @Description  The vendor's submission attempts for the ticket, newest first
// @Tags         refund-sessions
// @Produce      json
// @Param        ticketId path int true "Support ticket ID"
// @Success      200 {object} APIResponse[[]refundapp.SubmissionView]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /support-tickets/{ticketId}/refund-submissions [get]
func (h *RefundSessionHandler) ListSubmissions(c *gin.Context) {
	vendorID, err := getVendorID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var uri dto.TicketURI
	if !bindURI(c, &uri) {
		return
	}
	submissions, err := h.service.ListSubmissions(c.Request.Context(), vendorID, uri.TicketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, submissions)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	refundapp "github.com/vendorhub/console/internal/application/refund"
	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
	"github.com/vendorhub/console/internal/interfaces/http/middleware"
)

type mockRefundService struct {
	mock.Mock
}

func (m *mockRefundService) view(args mock.Arguments) (*refundapp.SessionView, error) {
	v, _ := args.Get(0).(*refundapp.SessionView)
	return v, args.Error(1)
}

func (m *mockRefundService) OpenSession(ctx context.Context, vendorID string, ticketID int64) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, ticketID))
}

func (m *mockRefundService) GetSession(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID))
}

func (m *mockRefundService) AwaitIdentityNumbers(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID))
}

func (m *mockRefundService) RefreshIdentityNumbers(ctx context.Context, vendorID, sessionID string, orderDetailID int64) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, orderDetailID))
}

func (m *mockRefundService) ToggleLine(ctx context.Context, vendorID, sessionID string, orderDetailID int64, include bool) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, orderDetailID, include))
}

func (m *mockRefundService) SetLineQuantity(ctx context.Context, vendorID, sessionID string, orderDetailID int64, quantity int) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, orderDetailID, quantity))
}

func (m *mockRefundService) SetLineSerial(ctx context.Context, vendorID, sessionID string, orderDetailID int64, index int, serial string) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, orderDetailID, index, serial))
}

func (m *mockRefundService) SetLineLot(ctx context.Context, vendorID, sessionID string, orderDetailID int64, lot string) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, orderDetailID, lot))
}

func (m *mockRefundService) LotAvailability(ctx context.Context, vendorID, sessionID string, orderDetailID int64) ([]refund.LotQuantity, error) {
	args := m.Called(ctx, vendorID, sessionID, orderDetailID)
	lots, _ := args.Get(0).([]refund.LotQuantity)
	return lots, args.Error(1)
}

func (m *mockRefundService) SetRefundAmount(ctx context.Context, vendorID, sessionID string, amount decimal.Decimal) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, amount.String()))
}

func (m *mockRefundService) ResetRefundAmount(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID))
}

func (m *mockRefundService) UpdatePayment(ctx context.Context, vendorID, sessionID string, in refundapp.PaymentInput) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID, in))
}

func (m *mockRefundService) Validate(ctx context.Context, vendorID, sessionID string) (*refundapp.SessionView, error) {
	return m.view(m.Called(ctx, vendorID, sessionID))
}

func (m *mockRefundService) Submit(ctx context.Context, vendorID, sessionID string) (*refundapp.SubmitResult, error) {
	args := m.Called(ctx, vendorID, sessionID)
	res, _ := args.Get(0).(*refundapp.SubmitResult)
	return res, args.Error(1)
}

func (m *mockRefundService) CloseSession(ctx context.Context, vendorID, sessionID string) error {
	return m.Called(ctx, vendorID, sessionID).Error(0)
}

func (m *mockRefundService) ListSubmissions(ctx context.Context, vendorID string, ticketID int64) ([]refundapp.SubmissionView, error) {
	args := m.Called(ctx, vendorID, ticketID)
	subs, _ := args.Get(0).([]refundapp.SubmissionView)
	return subs, args.Error(1)
}

const testVendor = "vendor-1"

func refundRouter(svc RefundSessionService, vendorID string) *gin.Engine {
	middleware.SetupValidator()
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		if vendorID != "" {
			c.Set(middleware.JWTVendorIDKey, vendorID)
		}
		c.Next()
	})
	NewRefundSessionHandler(svc).RegisterRoutes(api)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionView() *refundapp.SessionView {
	return &refundapp.SessionView{ID: "sess-1", TicketID: 42, OrderID: 9001, Eligible: true}
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) refundapp.SessionView {
	t.Helper()
	var body struct {
		Success bool                  `json:"success"`
		Data    refundapp.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	return body.Data
}

func TestRefundSessionHandler_Open(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("OpenSession", mock.Anything, testVendor, int64(42)).Return(sessionView(), nil)

	w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/support-tickets/42/refund-sessions", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sess-1", decodeView(t, w).ID)
	svc.AssertExpectations(t)
}

func TestRefundSessionHandler_OpenErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"ticket not found", refund.ErrTicketNotFound, http.StatusNotFound, dto.ErrCodeRefundTicketNotFound},
		{"no order reference", refund.ErrOrderReferenceMissing, http.StatusUnprocessableEntity, dto.ErrCodeRefundOrderRefMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockRefundService)
			svc.On("OpenSession", mock.Anything, testVendor, int64(42)).Return(nil, tt.err)

			w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/support-tickets/42/refund-sessions", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestRefundSessionHandler_RejectsBadTicketID(t *testing.T) {
	svc := new(mockRefundService)
	router := refundRouter(svc, testVendor)

	for _, path := range []string{"/api/v1/support-tickets/abc/refund-sessions", "/api/v1/support-tickets/0/refund-sessions"} {
		w := doRequest(router, http.MethodPost, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	svc.AssertNotCalled(t, "OpenSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundSessionHandler_RequiresVendor(t *testing.T) {
	svc := new(mockRefundService)
	w := doRequest(refundRouter(svc, ""), http.MethodGet, "/api/v1/refund-sessions/sess-1", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundSessionHandler_Get(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("GetSession", mock.Anything, testVendor, "sess-1").Return(sessionView(), nil)
	svc.On("AwaitIdentityNumbers", mock.Anything, testVendor, "sess-1").Return(sessionView(), nil)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodGet, "/api/v1/refund-sessions/sess-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNumberOfCalls(t, "GetSession", 1)
	svc.AssertNumberOfCalls(t, "AwaitIdentityNumbers", 0)

	w = doRequest(router, http.MethodGet, "/api/v1/refund-sessions/sess-1?wait=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNumberOfCalls(t, "AwaitIdentityNumbers", 1)

	w = doRequest(router, http.MethodGet, "/api/v1/refund-sessions/sess-1?wait=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundSessionHandler_GetExpiredSession(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("GetSession", mock.Anything, testVendor, "gone").Return(nil, refund.ErrSessionNotFound)

	w := doRequest(refundRouter(svc, testVendor), http.MethodGet, "/api/v1/refund-sessions/gone", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefundSessionHandler_Close(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("CloseSession", mock.Anything, testVendor, "sess-1").Return(nil)

	w := doRequest(refundRouter(svc, testVendor), http.MethodDelete, "/api/v1/refund-sessions/sess-1", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestRefundSessionHandler_ToggleLine(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("ToggleLine", mock.Anything, testVendor, "sess-1", int64(7), false).Return(sessionView(), nil)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPost, "/api/v1/refund-sessions/sess-1/lines/7/toggle", `{"include":false}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/refund-sessions/sess-1/lines/7/toggle", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	svc.AssertNumberOfCalls(t, "ToggleLine", 1)
}

func TestRefundSessionHandler_SetQuantity(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("SetLineQuantity", mock.Anything, testVendor, "sess-1", int64(7), 0).Return(sessionView(), nil)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/quantity", `{"quantity":0}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/quantity", `{"quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/quantity", `{"quantity":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)

	svc.AssertNumberOfCalls(t, "SetLineQuantity", 1)
}

func TestRefundSessionHandler_SetSerial(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("SetLineSerial", mock.Anything, testVendor, "sess-1", int64(7), 1, "SN-2").Return(sessionView(), nil)
	svc.On("SetLineSerial", mock.Anything, testVendor, "sess-1", int64(7), 5, "SN-6").Return(nil, refund.ErrSerialIndexOutOfRange)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/serials/1", `{"serial_number":"SN-2"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/serials/5", `{"serial_number":"SN-6"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeRefundSerialIndex, decodeResponse(t, w).Error.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/serials/-1", `{"serial_number":"SN-0"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNumberOfCalls(t, "SetLineSerial", 2)
}

func TestRefundSessionHandler_SetLotAndAvailability(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("SetLineLot", mock.Anything, testVendor, "sess-1", int64(7), "LOT-A").Return(sessionView(), nil)
	svc.On("LotAvailability", mock.Anything, testVendor, "sess-1", int64(7)).Return([]refund.LotQuantity{
		{LotNumber: "LOT-A", Quantity: 2},
		{LotNumber: "LOT-B", Quantity: 1},
	}, nil)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/lines/7/lot", `{"lot_number":"LOT-A"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/refund-sessions/sess-1/lines/7/lots", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []refund.LotQuantity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []refund.LotQuantity{{LotNumber: "LOT-A", Quantity: 2}, {LotNumber: "LOT-B", Quantity: 1}}, body.Data)
	svc.AssertExpectations(t)
}

func TestRefundSessionHandler_RefreshIdentityNumbers(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("RefreshIdentityNumbers", mock.Anything, testVendor, "sess-1", int64(7)).Return(nil, refund.ErrLineNotFound)

	w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/refund-sessions/sess-1/lines/7/identity-numbers/refresh", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeRefundLineNotFound, decodeResponse(t, w).Error.Code)
}

func TestRefundSessionHandler_Amount(t *testing.T) {
	svc := new(mockRefundService)
	custom := sessionView()
	custom.CustomAmount = true
	custom.RefundAmount = decimal.RequireFromString("150000.5")
	svc.On("SetRefundAmount", mock.Anything, testVendor, "sess-1", "150000.5").Return(custom, nil)
	svc.On("ResetRefundAmount", mock.Anything, testVendor, "sess-1").Return(sessionView(), nil)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/amount", `{"amount":"150000.5"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.True(t, view.CustomAmount)
	assert.True(t, view.RefundAmount.Equal(decimal.RequireFromString("150000.5")))

	w = doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/amount", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/refund-sessions/sess-1/amount", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeView(t, w).CustomAmount)

	svc.AssertExpectations(t)
}

func TestRefundSessionHandler_UpdatePayment(t *testing.T) {
	svc := new(mockRefundService)
	in := refundapp.PaymentInput{BankAccountID: 12, ManualMode: true, GatewayPaymentID: "PAY-1"}
	svc.On("UpdatePayment", mock.Anything, testVendor, "sess-1", in).Return(sessionView(), nil)
	svc.On("UpdatePayment", mock.Anything, testVendor, "sess-1", refundapp.PaymentInput{BankAccountID: 99}).Return(nil, refund.ErrBankAccountNotFound)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/payment",
		`{"bank_account_id":12,"manual_mode":true,"gateway_payment_id":"PAY-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/refund-sessions/sess-1/payment", `{"bank_account_id":99}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeRefundBankAccount, decodeResponse(t, w).Error.Code)

	svc.AssertExpectations(t)
}

func TestRefundSessionHandler_Validate(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("Validate", mock.Anything, testVendor, "ok").Return(sessionView(), nil)
	verr := &refund.ValidationError{Rule: refund.RuleSerialDuplicate, Message: "Số serial bị trùng", OrderDetailID: 7}
	svc.On("Validate", mock.Anything, testVendor, "bad").Return(sessionView(), verr)
	router := refundRouter(svc, testVendor)

	w := doRequest(router, http.MethodPost, "/api/v1/refund-sessions/ok/validate", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/refund-sessions/bad/validate", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRefundValidation, resp.Error.Code)
	assert.Equal(t, "Số serial bị trùng", resp.Error.Message)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, string(refund.RuleSerialDuplicate), resp.Error.Details[0].Rule)
	assert.Equal(t, int64(7), resp.Error.Details[0].OrderDetailID)
	assert.NotNil(t, resp.Data)
}

func TestRefundSessionHandler_Submit(t *testing.T) {
	t.Run("succeeded", func(t *testing.T) {
		svc := new(mockRefundService)
		svc.On("Submit", mock.Anything, testVendor, "sess-1").Return(&refundapp.SubmitResult{
			SubmissionResult:      refund.SubmissionResult{Outcome: refund.OutcomeSucceeded, Message: "Hoàn tiền thành công"},
			TicketRefreshRequired: true,
			Session:               sessionView(),
		}, nil)

		w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/refund-sessions/sess-1/submit", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data refundapp.SubmitResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, refund.OutcomeSucceeded, body.Data.Outcome)
		assert.True(t, body.Data.TicketRefreshRequired)
	})

	t.Run("upstream failure is still 200", func(t *testing.T) {
		svc := new(mockRefundService)
		svc.On("Submit", mock.Anything, testVendor, "sess-1").Return(&refundapp.SubmitResult{
			SubmissionResult: refund.SubmissionResult{Outcome: refund.OutcomeFailed, Message: "Đơn hàng đã được hoàn tiền"},
			Session:          sessionView(),
		}, nil)

		w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/refund-sessions/sess-1/submit", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"outcome":"failed"`)
	})

	t.Run("validation failure carries the session", func(t *testing.T) {
		svc := new(mockRefundService)
		verr := &refund.ValidationError{Rule: refund.RuleBankAccountRequired, Message: "Vui lòng chọn tài khoản ngân hàng"}
		svc.On("Submit", mock.Anything, testVendor, "sess-1").Return(&refundapp.SubmitResult{Session: sessionView()}, verr)

		w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/refund-sessions/sess-1/submit", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body struct {
			Data  refundapp.SessionView `json:"data"`
			Error dto.ErrorInfo         `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "sess-1", body.Data.ID)
		assert.Equal(t, string(refund.RuleBankAccountRequired), body.Error.Details[0].Rule)
	})

	t.Run("concurrent submission", func(t *testing.T) {
		svc := new(mockRefundService)
		svc.On("Submit", mock.Anything, testVendor, "sess-1").Return(nil, refund.ErrSubmissionInProgress)

		w := doRequest(refundRouter(svc, testVendor), http.MethodPost, "/api/v1/refund-sessions/sess-1/submit", "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeRefundInProgress, decodeResponse(t, w).Error.Code)
	})
}

func TestRefundSessionHandler_ListSubmissions(t *testing.T) {
	svc := new(mockRefundService)
	svc.On("ListSubmissions", mock.Anything, testVendor, int64(42)).Return([]refundapp.SubmissionView{
		{ID: "01J0", SessionID: "sess-1", TicketID: 42, Outcome: refund.OutcomeFailed, Message: "Lỗi"},
	}, nil)

	w := doRequest(refundRouter(svc, testVendor), http.MethodGet, "/api/v1/support-tickets/42/refund-submissions", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []refundapp.SubmissionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "sess-1", body.Data[0].SessionID)
}

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorhub/console/internal/domain/refund"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:      server.URL + "/",
		ServiceToken: "svc-token",
		Timeout:      2 * time.Second,
	}, nil)
	require.NoError(t, err)
	return client
}

func writeEnvelope(w http.ResponseWriter, status int, ok bool, data any, errs ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": ok, "data": data, "errors": errs})
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "localhost:5000", "://bad"} {
		_, err := NewClient(Config{BaseURL: base}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig, base)
	}
}

func TestClient_GetTicket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/support-tickets/42", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, true, map[string]any{
			"id":          42,
			"title":       "Hoàn tiền đơn #1001",
			"description": "",
			"status":      "Open",
			"messages": []map[string]any{
				{"id": 1, "senderId": "u-1", "content": "xem đơn #1001", "sentAt": "2026-05-19T08:00:00Z"},
			},
		})
	})

	ticket, err := client.GetTicket(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ticket.ID)
	assert.Nil(t, ticket.OrderID)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, "xem đơn #1001", ticket.Messages[0].Body)

	orderID, ok := refund.ExtractOrderID(ticket)
	assert.True(t, ok)
	assert.Equal(t, int64(1001), orderID)
}

func TestClient_GetOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/1001", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":true,"errors":[],"data":{
			"id":1001,"orderCode":"ORD-1001","status":"Delivered",
			"deliveredAt":"2026-05-18T10:00:00Z","totalAmount":1000000,
			"orderDetails":[{"id":10,"productId":5,"productName":"Phân bón","categoryName":"Fertilizer",
				"quantity":2,"unitPrice":500000,"discountAmount":"100000"}]}}`)
	})

	order, err := client.GetOrder(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, "Delivered", order.Status)
	require.NotNil(t, order.DeliveredAt)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1000000)))
	require.Len(t, order.Details, 1)
	assert.Equal(t, "Fertilizer", order.Details[0].Category)
	assert.True(t, order.Details[0].DiscountAmount.Equal(decimal.NewFromInt(100000)))
}

func TestClient_GetExportedIdentityNumbers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/order-details/10/exported-identity-numbers", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":true,"data":[
			{"lotNumber":"L1","serialNumber":"S-1"},
			{"lotNumber":"L2","remainingQuantity":4}]}`)
	})

	items, err := client.GetExportedIdentityNumbers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].HasSerial())
	assert.Equal(t, map[string]int{"L1": 1, "L2": 4}, refund.LotAvailability(items))
}

func TestClient_EmptyDataIsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, nil)
	})

	items, err := client.GetExportedIdentityNumbers(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClient_NullDataForObjectEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, nil)
	})

	order, err := client.GetOrder(context.Background(), 1001)
	require.ErrorIs(t, err, ErrUpstreamRequestFailed)
	assert.Nil(t, order)

	ticket, err := client.GetTicket(context.Background(), 42)
	require.ErrorIs(t, err, ErrUpstreamRequestFailed)
	assert.Nil(t, ticket)
}

func TestClient_GetOrder_TimestampWithoutOffset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"data":{
			"id":1001,"orderCode":"ORD-1001","status":"Delivered",
			"deliveredAt":"2025-01-01T10:00:00","totalAmount":0,"orderDetails":[]}}`)
	})

	order, err := client.GetOrder(context.Background(), 1001)
	require.NoError(t, err)
	require.NotNil(t, order.DeliveredAt)
	assert.True(t, order.DeliveredAt.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestClient_GetOrder_NullDeliveredAt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"data":{"id":1001,"status":"Pending","deliveredAt":null}}`)
	})

	order, err := client.GetOrder(context.Background(), 1001)
	require.NoError(t, err)
	assert.Nil(t, order.DeliveredAt)
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2025-01-01T10:00:00Z"`, want},
		{"with offset", `"2025-01-01T17:00:00+07:00"`, want},
		{"without offset", `"2025-01-01T10:00:00"`, want},
		{"fractional without offset", `"2025-01-01T10:00:00.1234567"`, want.Add(123456700 * time.Nanosecond)},
		{"space separated", `"2025-01-01 10:00:00"`, want},
		{"null", `null`, time.Time{}},
		{"empty", `""`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.want.Equal(ts.Time), ts.Time.String())
		})
	}

	var ts timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestTicketDTO_SentAtWithoutOffset(t *testing.T) {
	var dto ticketDTO
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"messages":[
		{"id":1,"senderId":"u-1","content":"đơn #1001","sentAt":"2025-01-01T10:00:00"}]}`), &dto))

	ticket := dto.toDomain()
	require.Len(t, ticket.Messages, 1)
	assert.True(t, ticket.Messages[0].SentAt.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestClient_GetVendorBankAccounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vendor-bank-accounts/user/vendor-9", r.URL.Path)
		writeEnvelope(w, http.StatusOK, true, []map[string]any{
			{"id": 1, "bankCode": "VCB", "bankName": "Vietcombank", "accountNumber": "0011", "accountHolder": "NGUYEN VAN A"},
			{"id": 2, "bankCode": "TCB", "bankName": "Techcombank", "accountNumber": "0022", "accountHolder": "NGUYEN VAN A", "isDefault": true},
		})
	})

	accounts, err := client.GetVendorBankAccounts(context.Background(), "vendor-9")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.True(t, accounts[1].IsDefault)
	assert.Equal(t, "VCB", accounts[0].BankCode)
}

func TestClient_GetSupportedBanks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/banks/supported", r.URL.Path)
		writeEnvelope(w, http.StatusOK, true, []map[string]any{
			{"code": "VCB", "name": "Ngân hàng TMCP Ngoại thương Việt Nam", "shortName": "Vietcombank", "logo": "https://cdn/vcb.png"},
		})
	})

	banks, err := client.GetSupportedBanks(context.Background())
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, "https://cdn/vcb.png", banks[0].LogoURL)
}

func TestClient_GetErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
		wantMsg string
	}{
		{
			name:    "404 maps to not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantErr: ErrNotFound,
		},
		{
			name:    "500 without envelope",
			handler: func(w http.ResponseWriter, r *http.Request) { http.Error(w, "boom", http.StatusInternalServerError) },
			wantErr: ErrUpstreamRequestFailed,
		},
		{
			name: "status false carries the server message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusBadRequest, false, nil, "Ticket không hợp lệ")
			},
			wantErr: ErrUpstreamRequestFailed,
			wantMsg: "Ticket không hợp lệ",
		},
		{
			name: "data of the wrong shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"status":true,"data":"not-a-ticket"}`)
			},
			wantErr: ErrUpstreamRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.GetTicket(context.Background(), 1)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: base, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = client.GetSupportedBanks(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, client.Ping(context.Background()), ErrUpstreamUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = client.GetOrder(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClient_SubmitRefund(t *testing.T) {
	serial := "S-1"
	payload := refund.Payload{
		RefundAmount:  450000,
		BankAccountID: 2,
		OrderDetails: []refund.OrderDetailPayload{{
			OrderDetailID:   20,
			IdentityNumbers: []refund.IdentityNumberPayload{{LotNumber: "L1", Quantity: 1, SerialNumber: &serial}},
		}},
	}

	t.Run("accepted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/support-tickets/42/refund", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"refundAmount":450000,"bankAccountId":2,"orderDetails":[
				{"orderDetailId":20,"identityNumbers":[{"lotNumber":"L1","quantity":1,"serialNumber":"S-1"}]}]}`, string(body))
			writeEnvelope(w, http.StatusOK, true, nil)
		})

		reply, err := client.SubmitRefund(context.Background(), 42, payload)
		require.NoError(t, err)
		assert.True(t, reply.Accepted)
	})

	t.Run("rejected with messages", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, false, nil, "", "Số tiền vượt quá giới hạn")
		})

		reply, err := client.SubmitRefund(context.Background(), 42, payload)
		require.NoError(t, err)
		assert.False(t, reply.Accepted)
		assert.Equal(t, "Số tiền vượt quá giới hạn", refund.FailureMessage(reply.Errors))
	})

	t.Run("error status with status true is not accepted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusConflict, true, nil)
		})

		reply, err := client.SubmitRefund(context.Background(), 42, payload)
		require.NoError(t, err)
		assert.False(t, reply.Accepted)
	})

	t.Run("no envelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.SubmitRefund(context.Background(), 42, payload)
		assert.ErrorIs(t, err, ErrUpstreamRequestFailed)
	})
}

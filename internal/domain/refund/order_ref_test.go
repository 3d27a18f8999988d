package refund

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOrderID(t *testing.T) {
	structured := int64(555)

	tests := []struct {
		name     string
		ticket   *Ticket
		expected int64
		found    bool
	}{
		{"nil ticket", nil, 0, false},
		{"structured reference wins", &Ticket{OrderID: &structured, Title: "Đơn #123"}, 555, true},
		{"title first", &Ticket{Title: "Hoàn tiền đơn #123", Description: "xem #456"}, 123, true},
		{"description when title has none", &Ticket{Title: "Hoàn tiền", Description: "Đơn hàng #456 bị lỗi"}, 456, true},
		{"reply notes next", &Ticket{ReplyNotes: "khách gửi lại #789"}, 789, true},
		{"message bodies last", &Ticket{Messages: []TicketMessage{{Body: "xin chào"}, {Body: "mã đơn #1010"}}}, 1010, true},
		{"hash without digits is ignored", &Ticket{Title: "# urgent", Description: "#abc"}, 0, false},
		{"overflowing number falls through", &Ticket{Title: "#99999999999999999999", Description: "#42"}, 42, true},
		{"no reference", &Ticket{Title: "Cần hỗ trợ"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractOrderID(tt.ticket)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}

package refund

import (
	"regexp"
	"strconv"
)

// orderRefPattern matches free-text order references such as "#1042".
// Matching free text is fragile; a structured Ticket.OrderID always wins.
var orderRefPattern = regexp.MustCompile(`#(\d+)`)

// ExtractOrderID finds the order a ticket refers to. The structured
// reference is used when present; otherwise title, description, reply
// notes and message bodies are scanned in that order and the first
// match wins.
func ExtractOrderID(t *Ticket) (int64, bool) {
	if t == nil {
		return 0, false
	}
	if t.OrderID != nil && *t.OrderID > 0 {
		return *t.OrderID, true
	}

	fields := []string{t.Title, t.Description, t.ReplyNotes}
	for _, m := range t.Messages {
		fields = append(fields, m.Body)
	}
	for _, text := range fields {
		if id, ok := findOrderRef(text); ok {
			return id, true
		}
	}
	return 0, false
}

func findOrderRef(text string) (int64, bool) {
	for _, match := range orderRefPattern.FindAllStringSubmatch(text, -1) {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err == nil {
			return id, true
		}
	}
	return 0, false
}

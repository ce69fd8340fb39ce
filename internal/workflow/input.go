package workflow

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Qty accepts the loose encodings seen at the boundary: historical
// clients send quantity either as a JSON number or as a string
// ("2").  The raw value is kept as-is at decode time and coerced to a
// strict integer by Int; anything that does not coerce cleanly is
// rejected by the workflow with ErrInvalidQuantity.  An absent qty
// defaults to 1.
type Qty struct {
	raw json.RawMessage
}

// UnmarshalJSON never fails: validation is deferred so the workflow
// can answer with its own error taxonomy instead of a generic decode
// error.
func (q *Qty) UnmarshalJSON(b []byte) error {
	q.raw = append(q.raw[:0], b...)
	return nil
}

// MarshalJSON round-trips the coerced value when possible.
func (q Qty) MarshalJSON() ([]byte, error) {
	if n, ok := q.Int(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(string(q.raw))
}

// Int returns the quantity as an integer.  ok is false when the raw
// value is neither an integer nor a string holding one.
func (q Qty) Int() (int, bool) {
	raw := bytes.TrimSpace(q.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 1, true // qty omitted: default single unit
	}
	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(unquoted)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NewQty builds a Qty from a plain integer; used by tests and
// staff-entered orders constructed in code.
func NewQty(n int) Qty {
	return Qty{raw: json.RawMessage(strconv.Itoa(n))}
}

// ItemInput is one requested order line as received from a client.
// Name and Price are optional; when omitted they are resolved from the
// menu catalog.  Any client-supplied total elsewhere in the request is
// ignored outright.
type ItemInput struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
	Qty   Qty      `json:"qty"`
}

// Actor describes who is performing an operation, as read from the
// verified access token.  The zero value is an anonymous guest.
type Actor struct {
	UserID        uint64
	Role          string
	Phone         string
	Email         string
	Authenticated bool
}

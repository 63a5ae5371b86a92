package shop

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mikelcalvo/admin-cli/internal/requester"
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code int
	Text string
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status: %d %s", e.Code, e.Text)
}

// CheckResponse returns a *StatusError when resp is not OK.
func CheckResponse(resp *requester.Response) error {
	if resp.OK() {
		return nil
	}
	return &StatusError{Code: resp.StatusCode, Text: resp.Status, Body: resp.Body}
}

// Decode checks resp and decodes its JSON body into v.
func Decode(resp *requester.Response, v any) error {
	if err := CheckResponse(resp); err != nil {
		return err
	}
	if err := resp.JSON(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Row is a record decoded without a schema, as list tables use it.
type Row map[string]any

// ID returns the record id as text.
func (r Row) ID() string {
	return FormatCell("id", r["id"])
}

// FormatCell renders a raw JSON value for display under key.
func FormatCell(key string, v any) string {
	if v == nil {
		return ""
	}

	switch key {
	case "payment_status":
		if n, ok := asInt(v); ok {
			return PaymentStatus(n).String()
		}
	case "order_status":
		if n, ok := asInt(v); ok {
			return OrderStatus(n).String()
		}
	case "added_on", "last_updated", "datetime", "last_purchased", "last_purchase":
		if s, ok := v.(string); ok {
			return FormatDateTime(s)
		}
	}

	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "yes"
		}
		return "no"
	}
	return fmt.Sprint(v)
}

// Number renders an analytics figure; a missing one is zero.
func Number(n json.Number) string {
	if n == "" {
		return "0"
	}
	return n.String()
}

// FormatDateTime turns an ISO 8601 timestamp into "YYYY-MM-DD HH:MM:SS".
func FormatDateTime(s string) string {
	s = strings.Replace(s, "T", " ", 1)
	if len(s) > 19 {
		s = s[:19]
	}
	return s
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	case int:
		return t, true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	}
	return 0, false
}

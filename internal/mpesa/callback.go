// internal/mpesa/callback.go
package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedCallback marks a callback payload that cannot be correlated to
// a payment (bad JSON or missing CheckoutRequestID). The orchestrator drops
// these silently: the provider requires a 200 acknowledgment regardless.
var ErrMalformedCallback = errors.New("malformed M-Pesa callback payload")

type callbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

type callbackMetadata struct {
	Item []callbackItem `json:"Item"`
}

type stkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *callbackMetadata `json:"CallbackMetadata,omitempty"`
}

type callbackEnvelope struct {
	Body struct {
		STKCallback stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// CallbackOutcome is the provider callback normalized to a generic result.
// ResultCode 0 means the customer completed the payment and ReceiptNumber
// carries the settlement reference.
type CallbackOutcome struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	ReceiptNumber     string
	Amount            string
	PhoneNumber       string
}

func (o *CallbackOutcome) Success() bool { return o.ResultCode == 0 }

// ParseCallback normalizes the raw Daraja callback envelope.
func ParseCallback(raw []byte) (*CallbackOutcome, error) {
	var envelope callbackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	cb := envelope.Body.STKCallback
	if cb.CheckoutRequestID == "" {
		return nil, ErrMalformedCallback
	}

	out := &CallbackOutcome{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
	if cb.CallbackMetadata != nil {
		out.ReceiptNumber = metadataValue(cb.CallbackMetadata.Item, "MpesaReceiptNumber")
		out.Amount = metadataValue(cb.CallbackMetadata.Item, "Amount")
		out.PhoneNumber = metadataValue(cb.CallbackMetadata.Item, "PhoneNumber")
	}
	return out, nil
}

func metadataValue(items []callbackItem, name string) string {
	for _, item := range items {
		if item.Name != name || item.Value == nil {
			continue
		}
		switch v := item.Value.(type) {
		case string:
			return v
		case float64:
			// Receipts arrive as strings but Amount/PhoneNumber are JSON
			// numbers.
			return decimalString(v)
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func decimalString(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 400.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

const failedCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user."
    }
  }
}`

func TestParseCallbackSuccess(t *testing.T) {
	out, err := ParseCallback([]byte(successCallback))
	require.NoError(t, err)

	assert.True(t, out.Success())
	assert.Equal(t, "ws_CO_191220191020363925", out.CheckoutRequestID)
	assert.Equal(t, "NLJ7RT61SV", out.ReceiptNumber)
	assert.Equal(t, "400", out.Amount)
	assert.Equal(t, "254708374149", out.PhoneNumber)
}

func TestParseCallbackFailure(t *testing.T) {
	out, err := ParseCallback([]byte(failedCallback))
	require.NoError(t, err)

	assert.False(t, out.Success())
	assert.Equal(t, 1032, out.ResultCode)
	assert.Equal(t, "Request cancelled by user.", out.ResultDesc)
	assert.Empty(t, out.ReceiptNumber)
}

func TestParseCallbackMalformed(t *testing.T) {
	cases := map[string]string{
		"bad json":           `{"Body": `,
		"empty body":         `{}`,
		"missing checkout":   `{"Body":{"stkCallback":{"ResultCode":0}}}`,
		"wrong envelope key": `{"body":{"stk":{"CheckoutRequestID":"x"}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCallback([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformedCallback)
		})
	}
}

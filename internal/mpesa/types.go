// internal/mpesa/types.go
package mpesa

import (
	"encoding/json"
	"fmt"
)

// Config holds the Daraja credentials resolved from the environment at
// startup. All fields except BaseURL are mandatory.
type Config struct {
	BaseURL        string // https://sandbox.safaricom.co.ke or https://api.safaricom.co.ke
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string // Till/Paybill shortcode
	Passkey        string
	CallbackURL    string
}

func (c Config) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" || c.Shortcode == "" || c.Passkey == "" || c.CallbackURL == "" {
		return fmt.Errorf("incomplete M-Pesa configuration: consumer key/secret, shortcode, passkey and callback URL are required")
	}
	return nil
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

type stkPushRequest struct {
	BusinessShortCode string      `json:"BusinessShortCode"`
	Password          string      `json:"Password"`
	Timestamp         string      `json:"Timestamp"`
	TransactionType   string      `json:"TransactionType"`
	Amount            json.Number `json:"Amount"`
	PartyA            string      `json:"PartyA"`
	PartyB            string      `json:"PartyB"`
	PhoneNumber       string      `json:"PhoneNumber"`
	CallBackURL       string      `json:"CallBackURL"`
	AccountReference  string      `json:"AccountReference"`
	TransactionDesc   string      `json:"TransactionDesc"`
}

// STKPushResponse is Daraja's synchronous acknowledgement of a push request.
// CheckoutRequestID is the correlation token matched against the later
// asynchronous callback.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

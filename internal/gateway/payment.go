// Package gateway holds the external collaborators the workflow calls
// into: the payment gateway, the email notifier and the QR renderer.
// All of them are fallible remote capabilities; none is retried here.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qrdine/qrdine-server/internal/workflow"
)

// RazorpayGateway is a minimal client for the Razorpay orders API.
// CreateIntent registers a payment order; VerifySignature checks the
// HMAC the gateway computes over "order_id|payment_id" during
// checkout.
type RazorpayGateway struct {
	keyID   string
	secret  string
	baseURL string
	client  *http.Client
}

// NewRazorpayGateway builds a gateway client.  baseURL defaults to the
// public API host when empty (tests point it at a local server).
func NewRazorpayGateway(keyID, secret, baseURL string) *RazorpayGateway {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &RazorpayGateway{
		keyID:   keyID,
		secret:  secret,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// KeyID returns the public key the browser checkout needs.
func (g *RazorpayGateway) KeyID() string { return g.keyID }

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt,omitempty"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateIntent registers a payment of amountMinor (minor currency
// units) and returns the gateway's order descriptor.
func (g *RazorpayGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (workflow.Intent, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1, // auto capture
	})
	if err != nil {
		return workflow.Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return workflow.Intent{}, err
	}
	req.SetBasicAuth(g.keyID, g.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return workflow.Intent{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return workflow.Intent{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return workflow.Intent{}, fmt.Errorf("razorpay: create order returned %d", resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return workflow.Intent{}, err
	}
	return workflow.Intent{ID: out.ID, AmountMinor: out.Amount, Currency: out.Currency}, nil
}

// VerifySignature checks the checkout callback signature:
// HMAC-SHA256(secret, order_id + "|" + payment_id) hex-encoded.
// Comparison is constant-time.
func (g *RazorpayGateway) VerifySignature(intentID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

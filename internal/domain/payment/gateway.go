// internal/domain/payment/gateway.go
package payment

import "context"

// LineItem is one purchasable line sent to the gateway's hosted
// checkout. UnitAmount is in minor currency units.
type LineItem struct {
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int
}

// CheckoutSessionParams carries everything needed to open a hosted
// checkout session. Metadata is attached to the payment intent and
// read back verbatim on confirmation; it is the only channel through
// which the asynchronous flow recovers what was being purchased.
type CheckoutSessionParams struct {
	Currency   string
	LineItems  []LineItem
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession mirrors the gateway's checkout session object.
type CheckoutSession struct {
	ID              string           `json:"id"`
	URL             string           `json:"url"`
	PaymentStatus   string           `json:"payment_status"`
	AmountTotal     int64            `json:"amount_total"`
	PaymentIntent   string           `json:"payment_intent"`
	CustomerDetails *CustomerDetails `json:"customer_details"`
	ReceiptURL      string           `json:"receipt_url"`
}

// CustomerDetails is the billing contact the gateway collected.
type CustomerDetails struct {
	Email string `json:"email"`
}

// PaymentIntent mirrors the gateway's payment intent object, carrying
// the caller-supplied metadata.
type PaymentIntent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// PaymentStatusPaid is the session payment status that triggers order
// synthesis.
const PaymentStatusPaid = "paid"

// Gateway is the payment provider surface this service depends on.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
}

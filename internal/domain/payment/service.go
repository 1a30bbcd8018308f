// internal/domain/payment/service.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/cart"
	"github.com/your-org/order-service/internal/domain/order"
)

var (
	// ErrSessionOwnership means the caller asked about a checkout
	// session that was opened for a different user.
	ErrSessionOwnership = errors.New("session does not belong to this user")

	// ErrNoPaymentIntent means the session has no payment intent to
	// derive an invoice URL from.
	ErrNoPaymentIntent = errors.New("session has no payment intent")
)

// Service reconciles hosted checkout sessions into orders. The same
// confirmation path serves both the client-driven status poll and the
// asynchronous webhook, so either may run first (or both) and exactly
// one order comes out per session.
type Service struct {
	config       *config.Config
	gateway      Gateway
	cartService  *cart.Service
	orderService *order.Service
	log          *logrus.Logger
}

// NewService creates a new payment service
func NewService(cfg *config.Config, gateway Gateway, cartService *cart.Service, orderService *order.Service, log *logrus.Logger) *Service {
	return &Service{
		config:       cfg,
		gateway:      gateway,
		cartService:  cartService,
		orderService: orderService,
		log:          log,
	}
}

// metadataCartItem is the per-line shape serialized into payment
// intent metadata at session creation and read back at confirmation.
type metadataCartItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// CheckoutSessionResponse is what the client needs to hand the user
// off to the hosted payment page.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// StatusResponse reports the outcome of a session status check. OrderID
// is set only once the session is paid and the order exists.
type StatusResponse struct {
	Status  string `json:"status"`
	OrderID *uint  `json:"order_id,omitempty"`
}

// CreateCheckoutSession opens a hosted checkout session for the user's
// current cart. The cart contents and the user ID travel as payment
// intent metadata; the cart itself is left untouched until payment is
// confirmed.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID uint) (*CheckoutSessionResponse, error) {
	userCart, err := s.cartService.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if len(userCart.Items) == 0 {
		return nil, order.ErrEmptyCart
	}

	lineItems := make([]LineItem, 0, len(userCart.Items))
	metaItems := make([]metadataCartItem, 0, len(userCart.Items))
	for _, item := range userCart.Items {
		if item.Product == nil {
			continue
		}
		lineItems = append(lineItems, LineItem{
			Name:       item.Product.Name,
			ImageURL:   item.Product.ImageURL,
			UnitAmount: item.Product.Price,
			Quantity:   item.Quantity,
		})
		metaItems = append(metaItems, metadataCartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if len(lineItems) == 0 {
		return nil, order.ErrEmptyCart
	}

	metaJSON, err := json.Marshal(metaItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart metadata: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &CheckoutSessionParams{
		Currency:  s.config.Stripe.Currency,
		LineItems: lineItems,
		Metadata: map[string]string{
			"userId":    strconv.FormatUint(uint64(userID), 10),
			"cartItems": string(metaJSON),
		},
		SuccessURL: s.config.Stripe.SuccessURL,
		CancelURL:  s.config.Stripe.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": session.ID,
	}).Info("Checkout session created")

	return &CheckoutSessionResponse{SessionID: session.ID, URL: session.URL}, nil
}

// CheckStatus looks up a checkout session on behalf of its owner and,
// if it has been paid, makes sure the corresponding order exists. A
// session that is not (yet) paid reports its raw status and no order.
func (s *Service) CheckStatus(ctx context.Context, userID uint, sessionID string) (*StatusResponse, error) {
	session, intent, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if intent != nil {
		owner := intent.Metadata["userId"]
		if owner != "" && owner != strconv.FormatUint(uint64(userID), 10) {
			return nil, ErrSessionOwnership
		}
	}

	if session.PaymentStatus != PaymentStatusPaid {
		return &StatusResponse{Status: session.PaymentStatus}, nil
	}

	ord, err := s.confirmSession(session, intent)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{Status: PaymentStatusPaid, OrderID: &ord.ID}, nil
}

// HandleWebhook processes a raw webhook delivery. When a signing
// secret is configured the signature is verified before anything is
// trusted; without one the payload is accepted as-is, which is only
// tolerable outside production.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	var event *Event
	var err error
	if s.config.Stripe.WebhookSecret != "" {
		event, err = ConstructEvent(payload, signature, s.config.Stripe.WebhookSecret)
	} else {
		s.log.Warn("STRIPE_WEBHOOK_SECRET not set, accepting webhook without signature verification")
		event, err = ParseEventUnverified(payload)
	}
	if err != nil {
		return err
	}

	switch event.Type {
	case EventCheckoutSessionCompleted:
		return s.handleSessionCompleted(ctx, event)
	case EventPaymentIntentFailed:
		var intent PaymentIntent
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return fmt.Errorf("failed to decode payment intent: %w", err)
		}
		s.log.WithField("payment_intent", intent.ID).Warn("Payment failed")
	default:
		s.log.WithField("type", event.Type).Debug("Ignoring webhook event")
	}
	return nil
}

// InvoiceURL resolves a receipt link for a paid session: the
// provider's receipt when one exists, otherwise the dashboard page of
// the payment intent.
func (s *Service) InvoiceURL(ctx context.Context, userID uint, sessionID string) (string, error) {
	session, intent, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if intent != nil {
		owner := intent.Metadata["userId"]
		if owner != "" && owner != strconv.FormatUint(uint64(userID), 10) {
			return "", ErrSessionOwnership
		}
	}

	if session.ReceiptURL != "" {
		return session.ReceiptURL, nil
	}
	if session.PaymentIntent == "" {
		return "", ErrNoPaymentIntent
	}
	return "https://dashboard.stripe.com/test/payments/" + session.PaymentIntent, nil
}

func (s *Service) handleSessionCompleted(ctx context.Context, event *Event) error {
	var session CheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}

	var intent *PaymentIntent
	if session.PaymentIntent != "" {
		var err error
		intent, err = s.gateway.RetrievePaymentIntent(ctx, session.PaymentIntent)
		if err != nil {
			return fmt.Errorf("failed to retrieve payment intent: %w", err)
		}
	}

	if intent == nil || intent.Metadata["userId"] == "" {
		// Without the user in metadata there is nothing to attach the
		// order to. Acknowledge so the provider stops retrying.
		s.log.WithField("session_id", session.ID).Error("Webhook session has no userId metadata, skipping")
		return nil
	}

	ord, err := s.confirmSession(&session, intent)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"order_id":   ord.ID,
	}).Info("Checkout session reconciled")
	return nil
}

// confirmSession turns a paid session into an order, reusing the
// existing order when another path already created one.
func (s *Service) confirmSession(session *CheckoutSession, intent *PaymentIntent) (*order.Order, error) {
	if intent == nil {
		return nil, fmt.Errorf("session %s has no payment intent to confirm", session.ID)
	}

	userID, err := strconv.ParseUint(intent.Metadata["userId"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid userId in session metadata: %w", err)
	}

	var metaItems []metadataCartItem
	if raw := intent.Metadata["cartItems"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &metaItems); err != nil {
			return nil, fmt.Errorf("invalid cartItems in session metadata: %w", err)
		}
	}
	items := make([]order.OrderItem, 0, len(metaItems))
	for _, mi := range metaItems {
		items = append(items, order.OrderItem{ProductID: mi.ProductID, Quantity: mi.Quantity})
	}

	email := "not_provided"
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email = session.CustomerDetails.Email
	}

	return s.orderService.CreateOrderFromSession(&order.SessionOrderParams{
		UserID:        uint(userID),
		SessionID:     session.ID,
		Items:         items,
		TotalAmount:   session.AmountTotal,
		PaymentMethod: "card",
		PaymentResult: order.PaymentResult{
			ProviderID:   session.PaymentIntent,
			Status:       session.PaymentStatus,
			UpdateTime:   time.Now().UTC().Format(time.RFC3339),
			EmailAddress: email,
		},
	})
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*CheckoutSession, *PaymentIntent, error) {
	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	var intent *PaymentIntent
	if session.PaymentIntent != "" {
		intent, err = s.gateway.RetrievePaymentIntent(ctx, session.PaymentIntent)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
		}
	}
	return session, intent, nil
}

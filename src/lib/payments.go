package lib

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"ddtours/src/types"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/stripe/stripe-go/v82"
)

// Order is the gateway side payment order handed to the checkout widget.
type Order struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Receipt      string `json:"receipt"`
	Gateway      string `json:"gateway"`
	KeyID        string `json:"keyId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

type PaymentGateway interface {
	Name() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	// VerifyPayment returns the amount captured for the order in minor units,
	// or types.ErrInvalidSignature when the payment proof does not belong to it.
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (int64, error)
}

// ToMinorUnits converts a rupee amount to paise.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func SignRazorpayPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyRazorpaySignature(secret, orderID, paymentID, signature string) bool {
	expected := SignRazorpayPayment(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	keyID  string
	secret string
	orders razorpayOrders
}

func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, secret)
	return &RazorpayGateway{keyID: keyID, secret: secret, orders: client.Order}
}

func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

func (g *RazorpayGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*Order, error) {
	res, err := g.orders.Create(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		log.Printf("[razorpay] Error creating order: %s\n", err.Error())
		return nil, err
	}
	id, _ := res["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}
	order := &Order{ID: id, Amount: amount, Currency: currency, Receipt: receipt, Gateway: g.Name(), KeyID: g.keyID}
	if v, ok := res["amount"].(float64); ok {
		order.Amount = int64(v)
	}
	if v, ok := res["currency"].(string); ok && v != "" {
		order.Currency = v
	}
	return order, nil
}

func (g *RazorpayGateway) VerifyPayment(_ context.Context, orderID, paymentID, signature string) (int64, error) {
	if !VerifyRazorpaySignature(g.secret, orderID, paymentID, signature) {
		return 0, types.ErrInvalidSignature
	}
	res, err := g.orders.Fetch(orderID, nil, nil)
	if err != nil {
		log.Printf("[razorpay] Error fetching order [%s]: %s\n", orderID, err.Error())
		return 0, err
	}
	paid, ok := res["amount_paid"].(float64)
	if !ok {
		return 0, fmt.Errorf("razorpay order %s has no amount_paid", orderID)
	}
	return int64(paid), nil
}

type stripeIntents interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Retrieve(ctx context.Context, id string, params *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error)
}

// StripeGateway uses payment intents as orders. Verification reads the
// intent back from Stripe instead of trusting a client signature.
type StripeGateway struct {
	intents stripeIntents
}

func NewStripeGateway(sc *stripe.Client) *StripeGateway {
	return &StripeGateway{intents: sc.V1PaymentIntents}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		Metadata: map[string]string{"receipt": receipt},
	}
	pi, err := g.intents.Create(ctx, params)
	if err != nil {
		log.Printf("[stripe] Error creating payment intent: %s\n", err.Error())
		return nil, err
	}
	return &Order{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Receipt:      receipt,
		Gateway:      g.Name(),
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) VerifyPayment(ctx context.Context, orderID, paymentID, _ string) (int64, error) {
	params := &stripe.PaymentIntentRetrieveParams{}
	params.AddExpand("latest_charge")
	pi, err := g.intents.Retrieve(ctx, orderID, params)
	if err != nil {
		log.Printf("[stripe] Error retrieving payment intent [%s]: %s\n", orderID, err.Error())
		return 0, types.ErrInvalidSignature
	}
	if paymentID != pi.ID && (pi.LatestCharge == nil || pi.LatestCharge.ID != paymentID) {
		return 0, types.ErrInvalidSignature
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return 0, types.ErrPaymentIncomplete
	}
	return pi.AmountReceived, nil
}

package billing

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/pathcraft-app/pathcraft/internal/pkg/env"
)

// ProcessorSubscriptionInput is what the orchestrator asks the payment
// processor to create. Notes travel with the subscription so webhooks can be
// correlated back to the local user.
type ProcessorSubscriptionInput struct {
	PlanID     string
	CustomerID string
	TotalCount int
	Quantity   int
	Notes      map[string]interface{}
}

// ProcessorSubscription is the processor's view of a created subscription.
type ProcessorSubscription struct {
	ID       string
	Status   string
	ShortURL string
}

// ProcessorClient is the payment-processor collaborator. The orchestrator
// depends on this interface only; the Razorpay SDK backs it in production.
type ProcessorClient interface {
	FindOrCreateCustomer(ctx context.Context, name, email, contact string) (string, error)
	CreateSubscription(ctx context.Context, in ProcessorSubscriptionInput) (*ProcessorSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type razorpayClient struct {
	client *razorpay.Client
}

// NewRazorpayClient wraps the Razorpay SDK as a ProcessorClient.
func NewRazorpayClient(keyID, keySecret string) ProcessorClient {
	return &razorpayClient{client: razorpay.NewClient(keyID, keySecret)}
}

// NewRazorpayClientFromEnv builds the processor client from RAZORPAY_KEY_ID
// and RAZORPAY_KEY_SECRET.
func NewRazorpayClientFromEnv() ProcessorClient {
	return NewRazorpayClient(
		env.GetEnv("RAZORPAY_KEY_ID", ""),
		env.GetEnv("RAZORPAY_KEY_SECRET", ""),
	)
}

func (r *razorpayClient) FindOrCreateCustomer(ctx context.Context, name, email, contact string) (string, error) {
	_ = ctx
	data := map[string]interface{}{
		"name":  name,
		"email": email,
		// fail_existing=0 returns the existing customer for a known email
		// instead of erroring, which gives find-or-create in one call.
		"fail_existing": "0",
	}
	if contact != "" {
		data["contact"] = contact
	}

	res, err := r.client.Customer.Create(data, nil)
	if err != nil {
		return "", err
	}
	id, ok := res["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay customer response missing id")
	}
	return id, nil
}

func (r *razorpayClient) CreateSubscription(ctx context.Context, in ProcessorSubscriptionInput) (*ProcessorSubscription, error) {
	_ = ctx
	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	data := map[string]interface{}{
		"plan_id":         in.PlanID,
		"total_count":     in.TotalCount,
		"quantity":        quantity,
		"customer_notify": 1,
	}
	if in.CustomerID != "" {
		data["customer_id"] = in.CustomerID
	}
	if len(in.Notes) > 0 {
		data["notes"] = in.Notes
	}

	res, err := r.client.Subscription.Create(data, nil)
	if err != nil {
		return nil, err
	}
	id, ok := res["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("razorpay subscription response missing id")
	}

	sub := &ProcessorSubscription{ID: id}
	if status, ok := res["status"].(string); ok {
		sub.Status = status
	}
	if shortURL, ok := res["short_url"].(string); ok {
		sub.ShortURL = shortURL
	}
	return sub, nil
}

func (r *razorpayClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_ = ctx
	data := map[string]interface{}{
		"cancel_at_cycle_end": 0,
	}
	_, err := r.client.Subscription.Cancel(subscriptionID, data, nil)
	return err
}

package stripepay

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"quizcraft-service/internal/domain"
)

// Provider implements app.PaymentProvider on top of the Stripe SDK.
type Provider struct {
	api           *client.API
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Provider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Provider{api: api, webhookSecret: webhookSecret}
}

func (p *Provider) CreateIntent(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	return fromStripe(intent), nil
}

func (p *Provider) GetIntent(_ context.Context, id string) (*domain.PaymentIntent, error) {
	intent, err := p.api.PaymentIntents.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe get intent: %w", err)
	}
	return fromStripe(intent), nil
}

// VerifyWebhook checks the signature header and returns the parsed event.
func (p *Provider) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, p.webhookSecret)
}

func fromStripe(intent *stripe.PaymentIntent) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}
}

package app

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/logger"
)

// minIntentAmount is the smallest accepted charge, in whole currency units.
const minIntentAmount = 0.50

// PaymentService shapes and validates billing requests; the wire semantics
// belong to the provider SDK.
type PaymentService struct {
	provider PaymentProvider
	log      *logger.Logger
}

func NewPaymentService(provider PaymentProvider, log *logger.Logger) *PaymentService {
	return &PaymentService{provider: provider, log: log}
}

// CreateIntent opens a payment intent for the given amount (in whole
// currency units), tagging it with the requesting user.
func (s *PaymentService) CreateIntent(ctx context.Context, userID uuid.UUID, userEmail string, amount float64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	if s.provider == nil {
		return nil, domain.ErrPaymentsNotConfigured
	}
	if amount < minIntentAmount {
		return nil, domain.Invalid("amount must be at least $0.50 USD")
	}
	if currency == "" {
		currency = "usd"
	}

	merged := map[string]string{
		"quiz_app":   "true",
		"user_id":    userID.String(),
		"user_email": userEmail,
	}
	for k, v := range metadata {
		merged[k] = v
	}

	intent, err := s.provider.CreateIntent(ctx, int64(math.Round(amount*100)), currency, merged)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	s.log.Info("payment intent created", "intentID", intent.ID, "userID", userID)
	return intent, nil
}

// Confirm verifies that a payment intent actually succeeded.
func (s *PaymentService) Confirm(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	if s.provider == nil {
		return nil, domain.ErrPaymentsNotConfigured
	}
	if intentID == "" {
		return nil, domain.Invalid("payment intent ID is required")
	}
	intent, err := s.provider.GetIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent: %w", err)
	}
	return intent, nil
}

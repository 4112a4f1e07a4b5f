package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	billingsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"
)

// StripeService manages Stripe integration
type StripeService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewStripeService initializes Stripe key and returns service with a scoped logger
func NewStripeService(cfg *config.Config, userRepo repository.UserRepository, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, userRepo: userRepo, logger: lg}
}

// getUserIDFromEvent is a helper method to resolve user ID from webhook metadata or customer ID
func (s *StripeService) getUserIDFromEvent(ctx context.Context, metadata map[string]string, customerID string) (int64, error) {
	if raw, ok := metadata["user_id"]; ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid user_id metadata %q: %w", raw, err)
		}
		return id, nil
	}
	if customerID == "" {
		return 0, errors.New("cannot determine user: missing metadata and customer id")
	}
	s.logger.Warn().Str("stripe_customer_id", customerID).Msg("Missing user_id metadata; looking up user by customer ID")
	u, err := s.userRepo.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to lookup user by Stripe customer ID: %w", err)
	}
	if u == nil {
		return 0, fmt.Errorf("no user found for customer ID: %s", customerID)
	}
	return u.ID, nil
}

// GetOrCreateCustomer ensures a Stripe Customer exists for a user
func (s *StripeService) GetOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Name:     stripe.String(user.Username),
		Metadata: map[string]string{"user_id": strconv.FormatInt(user.ID, 10)},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeInfo(ctx, user.ID, cust.ID, ""); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a Stripe Checkout session for a subscription plan
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID int64, plan string) (string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch user for checkout session")
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	customerID, err := s.GetOrCreateCustomer(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to get or create Stripe customer for checkout session")
		return "", err
	}
	var priceID string
	switch plan {
	case "monthly":
		priceID = s.cfg.StripePriceMonthly
	case "annual":
		priceID = s.cfg.StripePriceAnnual
	default:
		return "", fmt.Errorf("invalid plan: %s", plan)
	}
	sessParams := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(priceID), Quantity: stripe.Int64(1)}},
		Mode:               stripe.String(stripe.CheckoutSessionModeSubscription),
		SuccessURL:         stripe.String(s.cfg.StripePortalReturnURL + "?status=success"),
		CancelURL:          stripe.String(s.cfg.StripePortalReturnURL + "?status=cancel"),
		Metadata:           map[string]string{"user_id": strconv.FormatInt(userID, 10)},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("plan", plan).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession creates a Stripe Customer Portal session
func (s *StripeService) CreatePortalSession(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch user for portal session")
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil || user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		s.logger.Error().Int64("user_id", userID).Msg("No Stripe customer ID found for user when creating portal session")
		return "", fmt.Errorf("no stripe customer for user: %d", userID)
	}
	params := &stripe.BillingPortalSessionParams{Customer: stripe.String(*user.StripeCustomerID), ReturnURL: stripe.String(s.cfg.StripePortalReturnURL)}
	sess, err := billingsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to create Stripe billing portal session")
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook processes Stripe webhook events
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		customerID := ""
		if cs.Customer != nil {
			customerID = cs.Customer.ID
		}
		userID, err := s.getUserIDFromEvent(ctx, cs.Metadata, customerID)
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", cs.ID).Msg("Failed to determine user ID from checkout session")
			http.Error(w, "failed to identify user", http.StatusBadRequest)
			return
		}
		subID := ""
		if cs.Subscription != nil {
			subID = cs.Subscription.ID
		}
		if err := s.userRepo.UpdateStripeInfo(ctx, userID, customerID, subID); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to store Stripe IDs on checkout.session.completed")
			http.Error(w, "failed to save subscription", http.StatusInternalServerError)
			return
		}
		if err := s.userRepo.UpdateSubscriptionStatus(ctx, userID, true); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to activate subscription on checkout.session.completed")
			http.Error(w, "failed to save subscription", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Int64("user_id", userID).Str("subscription_id", subID).Msg("Subscription activated")
	case "customer.subscription.updated":
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			s.logger.Error().Err(err).Msg("Invalid customer.subscription.updated payload")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		customerID := ""
		if ss.Customer != nil {
			customerID = ss.Customer.ID
		}
		userID, err := s.getUserIDFromEvent(ctx, ss.Metadata, customerID)
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", ss.ID).Msg("Failed to determine user ID from subscription")
			http.Error(w, "failed to identify user", http.StatusInternalServerError)
			return
		}
		isPro := ss.Status == stripe.SubscriptionStatusActive || ss.Status == stripe.SubscriptionStatusTrialing
		if err := s.userRepo.UpdateSubscriptionStatus(ctx, userID, isPro); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to update subscription status")
			http.Error(w, "failed to update subscription", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Int64("user_id", userID).Str("status", string(ss.Status)).Bool("is_pro", isPro).Msg("Subscription status updated")
	case "customer.subscription.deleted":
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			s.logger.Error().Err(err).Msg("Invalid customer.subscription.deleted payload")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		customerID := ""
		if ss.Customer != nil {
			customerID = ss.Customer.ID
		}
		userID, err := s.getUserIDFromEvent(ctx, ss.Metadata, customerID)
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", ss.ID).Msg("Failed to determine user ID from subscription")
			http.Error(w, "failed to identify user", http.StatusInternalServerError)
			return
		}
		if err := s.userRepo.UpdateSubscriptionStatus(ctx, userID, false); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to downgrade user on customer.subscription.deleted")
			http.Error(w, "failed to downgrade subscription", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Int64("user_id", userID).Msg("Subscription cancelled, user downgraded")
	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
	}
	w.WriteHeader(http.StatusOK)
}

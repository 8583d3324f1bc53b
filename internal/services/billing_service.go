package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/datatypes"
)

// PaymentGateway is the slice of the Stripe API the billing flow calls.
type PaymentGateway interface {
	NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewPortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

// StripeGateway calls Stripe through a per-instance client rather than the package-level key.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{api: sc}
}

func (g *StripeGateway) NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return g.api.CheckoutSessions.New(params)
}

func (g *StripeGateway) NewPortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	params.Context = ctx
	return g.api.BillingPortalSessions.New(params)
}

type BillingService struct {
	subs          repository.SubscriptionRepository
	events        repository.BillingEventRepository
	catalog       *plans.Catalog
	gateway       PaymentGateway
	webhookSecret string
	appURL        string
}

func NewBillingService(
	subs repository.SubscriptionRepository,
	events repository.BillingEventRepository,
	catalog *plans.Catalog,
	gateway PaymentGateway,
	webhookSecret, appURL string,
) *BillingService {
	return &BillingService{
		subs:          subs,
		events:        events,
		catalog:       catalog,
		gateway:       gateway,
		webhookSecret: webhookSecret,
		appURL:        strings.TrimRight(appURL, "/"),
	}
}

// CreateCheckout starts a subscription checkout for priceID and returns the hosted page URL.
func (s *BillingService) CreateCheckout(ctx context.Context, userID uuid.UUID, email, priceID string) (string, error) {
	if userID == uuid.Nil {
		return "", ErrUnauthenticated
	}
	if priceID == "" {
		return "", invalid("Price ID is required")
	}
	if price, ok := s.catalog.Lookup(priceID); !ok || price.Legacy {
		return "", invalid("Unknown price ID")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(userID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"userId": userID.String()},
		},
		Metadata:   map[string]string{"userId": userID.String()},
		SuccessURL: stripe.String(s.appURL + "/dashboard?success=true"),
		CancelURL:  stripe.String(s.appURL + "/pricing?canceled=true"),
	}

	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub != nil && sub.StripeCustomerID != "" {
		params.Customer = stripe.String(sub.StripeCustomerID)
	} else if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := s.gateway.NewCheckoutSession(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortal opens a billing portal session for the user's stored customer.
func (s *BillingService) CreatePortal(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", ErrUnauthenticated
	}
	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil || sub.StripeCustomerID == "" {
		return "", ErrNoBillingCustomer
	}

	sess, err := s.gateway.NewPortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.StripeCustomerID),
		ReturnURL: stripe.String(s.appURL + "/dashboard"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies a Stripe delivery, applies it to the subscription
// table and records it in the event ledger. Events already processed are
// acknowledged without being reapplied.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	eventType := string(event.Type)

	prev, err := s.events.GetBillingEvent(ctx, event.ID)
	switch {
	case err == nil && prev.Result != models.BillingEventFailed:
		slog.Info("duplicate billing event acknowledged",
			"action", "billing.webhook",
			"event_id", event.ID,
			"event_type", eventType,
		)
		metrics.BillingEvents.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to load billing event: %w", err)
	}

	handled, applyErr := s.apply(ctx, eventType, event.Data.Raw)

	now := time.Now().UTC()
	record := &models.BillingEvent{
		ID:          event.ID,
		Type:        eventType,
		Result:      models.BillingEventProcessed,
		Payload:     datatypes.JSON(payload),
		ProcessedAt: &now,
	}
	switch {
	case applyErr != nil:
		record.Result = models.BillingEventFailed
		record.Error = applyErr.Error()
		record.ProcessedAt = nil
	case !handled:
		record.Result = models.BillingEventIgnored
	}
	metrics.BillingEvents.WithLabelValues(eventType, record.Result).Inc()

	if err := s.events.SaveBillingEvent(ctx, record); err != nil {
		slog.Error("failed to record billing event",
			"action", "billing.webhook",
			"event_id", event.ID,
			"error", err,
		)
		if applyErr == nil {
			return fmt.Errorf("failed to record billing event: %w", err)
		}
	}

	if applyErr != nil {
		slog.Error("error handling webhook",
			"action", "billing.webhook",
			"event_id", event.ID,
			"event_type", eventType,
			"error", applyErr,
		)
		return applyErr
	}
	return nil
}

func (s *BillingService) apply(ctx context.Context, eventType string, raw json.RawMessage) (bool, error) {
	switch eventType {
	case "customer.subscription.created", "customer.subscription.updated":
		return true, s.upsertSubscription(ctx, raw)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return true, fmt.Errorf("invalid subscription payload: %w", err)
		}
		return true, s.setStatus(ctx, sub.ID, plans.StatusCanceled)
	case "invoice.paid":
		return true, s.setInvoiceStatus(ctx, raw, plans.StatusActive)
	case "invoice.payment_failed":
		return true, s.setInvoiceStatus(ctx, raw, plans.StatusPastDue)
	default:
		return false, nil
	}
}

// subscriptionPeriods covers both payload shapes: period bounds at the top
// level (older API versions) and on each item (newer ones).
type subscriptionPeriods struct {
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
	Items              struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

func (p subscriptionPeriods) bounds() (*time.Time, *time.Time) {
	start, end := p.CurrentPeriodStart, p.CurrentPeriodEnd
	if start == 0 && end == 0 && len(p.Items.Data) > 0 {
		start, end = p.Items.Data[0].CurrentPeriodStart, p.Items.Data[0].CurrentPeriodEnd
	}
	return unixTime(start), unixTime(end)
}

func (s *BillingService) upsertSubscription(ctx context.Context, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("invalid subscription payload: %w", err)
	}
	var periods subscriptionPeriods
	if err := json.Unmarshal(raw, &periods); err != nil {
		return fmt.Errorf("invalid subscription payload: %w", err)
	}

	userID, err := uuid.Parse(sub.Metadata["userId"])
	if err != nil {
		return fmt.Errorf("subscription %s has no valid userId metadata: %w", sub.ID, err)
	}

	priceID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}
	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	start, end := periods.bounds()

	record := &models.Subscription{
		UserID:               userID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
		PlanType:             s.catalog.TierFor(priceID),
		Status:               plans.Status(sub.Status),
		CurrentPeriodStart:   start,
		CurrentPeriodEnd:     end,
	}

	slog.Info("processing subscription webhook",
		"action", "billing.subscription_upsert",
		"user_id", userID.String(),
		"customer_id", customerID,
		"price_id", priceID,
		"plan_type", string(record.PlanType),
		"status", string(record.Status),
	)
	if err := s.subs.UpsertSubscription(ctx, record); err != nil {
		return fmt.Errorf("error upserting subscription: %w", err)
	}
	return nil
}

// invoiceParent is where newer API versions put the subscription reference.
type invoiceParent struct {
	Parent *struct {
		SubscriptionDetails *struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func (s *BillingService) setInvoiceStatus(ctx context.Context, raw json.RawMessage, status plans.Status) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("invalid invoice payload: %w", err)
	}

	subscriptionID := ""
	if inv.Subscription != nil {
		subscriptionID = inv.Subscription.ID
	}
	if subscriptionID == "" {
		var parent invoiceParent
		if err := json.Unmarshal(raw, &parent); err == nil &&
			parent.Parent != nil && parent.Parent.SubscriptionDetails != nil {
			subscriptionID = parent.Parent.SubscriptionDetails.Subscription
		}
	}
	if subscriptionID == "" {
		return nil
	}
	return s.setStatus(ctx, subscriptionID, status)
}

func (s *BillingService) setStatus(ctx context.Context, subscriptionID string, status plans.Status) error {
	n, err := s.subs.UpdateSubscriptionStatus(ctx, subscriptionID, status)
	if err != nil {
		return fmt.Errorf("error updating subscription: %w", err)
	}
	if n == 0 {
		slog.Warn("no subscription row for status update",
			"action", "billing.status_update",
			"subscription_id", subscriptionID,
			"status", string(status),
		)
	}
	return nil
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

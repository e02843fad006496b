package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/subledger/subledger/internal/email"
	"github.com/subledger/subledger/internal/publisher"
	"github.com/subledger/subledger/internal/types"
)

// subscriberEmailKey is the metadata key under which a subscription stores
// the owner's notification address.
const subscriberEmailKey = "email"

// NotificationService consumes billing events and sends the matching emails:
// a receipt after each settlement, a warning when a settlement fails, and a
// low-balance alert when the remaining escrow no longer covers the next
// cycle.
type NotificationService struct {
	ServiceParams
	email *email.Email
}

func NewNotificationService(params ServiceParams, email *email.Email) *NotificationService {
	return &NotificationService{
		ServiceParams: params,
		email:         email,
	}
}

// Run subscribes to the billing topics and dispatches until ctx is done.
func (s *NotificationService) Run(ctx context.Context) error {
	processed, err := s.EventPublisher.Subscribe(ctx, publisher.TopicPaymentProcessed)
	if err != nil {
		return err
	}
	failed, err := s.EventPublisher.Subscribe(ctx, publisher.TopicPaymentFailed)
	if err != nil {
		return err
	}

	go s.consume(ctx, processed, s.handlePaymentProcessed)
	go s.consume(ctx, failed, s.handlePaymentFailed)

	return nil
}

func (s *NotificationService) consume(ctx context.Context, messages <-chan *message.Message, handle func(ctx context.Context, msg *message.Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			handle(s.contextFromMessage(ctx, msg), msg)
			msg.Ack()
		}
	}
}

// contextFromMessage restores the tenancy scope the event was published
// under so repository lookups resolve the right rows.
func (s *NotificationService) contextFromMessage(ctx context.Context, msg *message.Message) context.Context {
	if tenantID := msg.Metadata.Get("tenant_id"); tenantID != "" {
		ctx = types.SetTenantID(ctx, tenantID)
	}
	if environmentID := msg.Metadata.Get("environment_id"); environmentID != "" {
		ctx = types.SetEnvironmentID(ctx, environmentID)
	}
	return ctx
}

func (s *NotificationService) handlePaymentProcessed(ctx context.Context, msg *message.Message) {
	var event publisher.PaymentProcessedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.Logger.Errorw("failed to decode payment event", "error", err)
		return
	}

	address := s.subscriberEmail(ctx, event.SubscriptionID)
	if address == "" {
		return
	}

	_, err := s.email.SendEmailWithTemplate(ctx, email.SendEmailWithTemplateRequest{
		ToAddress:    address,
		Subject:      "Your Subscription Payment Receipt",
		TemplatePath: "payment-receipt.html",
		TemplateData: map[string]interface{}{
			"amount_display":  types.FormatStable(event.AmountDue),
			"subscription_id": event.SubscriptionID,
			"receipt_id":      event.ReceiptID,
		},
	})
	if err != nil {
		s.Logger.Errorw("failed to send receipt email",
			"subscription_id", event.SubscriptionID,
			"error", err,
		)
	}

	// Warn when the remaining escrow no longer covers the next cycle.
	if event.RemainingEscrow.LessThan(event.NextAmountDue) {
		_, err = s.email.SendEmailWithTemplate(ctx, email.SendEmailWithTemplateRequest{
			ToAddress:    address,
			Subject:      "Low Subscription Balance Alert",
			TemplatePath: "low-balance.html",
			TemplateData: map[string]interface{}{
				"subscription_id": event.SubscriptionID,
				"balance_display": types.FormatStable(event.RemainingEscrow),
			},
		})
		if err != nil {
			s.Logger.Errorw("failed to send low balance email",
				"subscription_id", event.SubscriptionID,
				"error", err,
			)
		}
	}
}

func (s *NotificationService) handlePaymentFailed(ctx context.Context, msg *message.Message) {
	var event publisher.PaymentFailedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.Logger.Errorw("failed to decode payment failure event", "error", err)
		return
	}

	address := s.subscriberEmail(ctx, event.SubscriptionID)
	if address == "" {
		return
	}

	_, err := s.email.SendEmailWithTemplate(ctx, email.SendEmailWithTemplateRequest{
		ToAddress:    address,
		Subject:      "Subscription Payment Failed",
		TemplatePath: "payment-failed.html",
		TemplateData: map[string]interface{}{
			"subscription_id": event.SubscriptionID,
			"reason":          event.Reason,
		},
	})
	if err != nil {
		s.Logger.Errorw("failed to send payment failure email",
			"subscription_id", event.SubscriptionID,
			"error", err,
		)
	}
}

func (s *NotificationService) subscriberEmail(ctx context.Context, subscriptionID string) string {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		s.Logger.Warnw("failed to load subscription for notification",
			"subscription_id", subscriptionID,
			"error", err,
		)
		return ""
	}
	return sub.Metadata[subscriberEmailKey]
}

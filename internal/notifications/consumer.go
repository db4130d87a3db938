package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox/idempotency"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox/payloads"
)

const payoutNotificationConsumer = "payout-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type workLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error)
}

// Consumer watches domain events and turns payout outcomes and split ledger
// changes into recipient notifications.
type Consumer struct {
	repo         repository
	works        workLookup
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a payout notification consumer.
func NewConsumer(repo repository, works workLookup, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if works == nil {
		return nil, fmt.Errorf("work lookup required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		works:        works,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if !handledEventTypes[eventType] {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, payoutNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, payoutNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

var handledEventTypes = map[enums.OutboxEventType]bool{
	enums.EventPayoutSettled:     true,
	enums.EventPayoutFailed:      true,
	enums.EventSplitLedgerLocked: true,
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventPayoutSettled:
		var payload payloads.PayoutSettledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyPayoutSettled(ctx, payload, logCtx)
	case enums.EventPayoutFailed:
		var payload payloads.PayoutFailedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyPayoutFailed(ctx, payload, logCtx)
	case enums.EventSplitLedgerLocked:
		var payload payloads.SplitLedgerLockedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyLedgerLocked(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) notifyPayoutSettled(ctx context.Context, payload payloads.PayoutSettledEvent, logCtx context.Context) error {
	if payload.RecipientID == nil {
		// external recipients have no in-app inbox
		c.logg.Info(logCtx, "payout settled for recipient without an account")
		return nil
	}
	notification := &models.Notification{
		RecipientID: *payload.RecipientID,
		Type:        enums.NotificationTypePayout,
		Title:       "Royalty payout received",
		Message:     fmt.Sprintf("You received %s for your share of a license sale.", formatAmount(payload.AmountCents, payload.Currency)),
		Link:        stringPtr(fmt.Sprintf("/transactions/%s", payload.TransactionID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "recipient notified of settled payout")
	return nil
}

func (c *Consumer) notifyPayoutFailed(ctx context.Context, payload payloads.PayoutFailedEvent, logCtx context.Context) error {
	if payload.RecipientID == nil {
		c.logg.Info(logCtx, "payout failed for recipient without an account")
		return nil
	}
	notification := &models.Notification{
		RecipientID: *payload.RecipientID,
		Type:        enums.NotificationTypePayout,
		Title:       "Royalty payout failed",
		Message:     fmt.Sprintf("A payout of %s could not be delivered: %s", formatAmount(payload.AmountCents, payload.Currency), payload.FailureReason),
		Link:        stringPtr(fmt.Sprintf("/transactions/%s", payload.TransactionID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "recipient notified of failed payout")
	return nil
}

func (c *Consumer) notifyLedgerLocked(ctx context.Context, payload payloads.SplitLedgerLockedEvent, logCtx context.Context) error {
	work, err := c.works.GetByID(ctx, payload.WorkID)
	if err != nil {
		return err
	}
	notification := &models.Notification{
		RecipientID: work.OwnerRecipientID,
		Type:        enums.NotificationTypeSplit,
		Title:       "Split locked",
		Message:     fmt.Sprintf("The split for %q is now locked: the first license sale has been distributed.", work.Title),
		Link:        stringPtr(fmt.Sprintf("/works/%s/split", payload.WorkID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "owner notified of locked split")
	return nil
}

func formatAmount(cents int64, currency enums.Currency) string {
	whole := cents / 100
	frac := cents % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d %s", whole, frac, currency)
}

func stringPtr(value string) *string {
	return &value
}

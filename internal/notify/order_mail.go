// Package notify renders and delivers order notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

type Sender interface {
	Notify(ctx context.Context, recipients []string, subject, body string) error
}

func OrderConfirmation(o *models.Order) (subject, body string) {
	subject = fmt.Sprintf("Order %s confirmed", shortID(o))

	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order.\n\nOrder: %s\nPlaced: %s\n\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04 MST"))
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%d x %s @ %s = %s\n", l.Quantity, l.Name, l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", o.Total.StringFixed(2))

	a := o.ShippingAddress
	fmt.Fprintf(&b, "\nShip to:\n%s %s\n", a.Street, a.Number)
	if a.Neighborhood != "" {
		fmt.Fprintf(&b, "%s\n", a.Neighborhood)
	}
	fmt.Fprintf(&b, "%s %s %s\n", a.PostalCode, a.City, a.State)
	return subject, b.String()
}

func AdminNewOrder(o *models.Order) (subject, body string) {
	subject = fmt.Sprintf("New order %s (%s)", shortID(o), o.Total.StringFixed(2))
	body = fmt.Sprintf("Customer: %s\nSession: %s\nLines: %d\nTotal: %s\n",
		o.CustomerEmail, o.PaymentSessionID, len(o.Lines), o.Total.StringFixed(2))
	return subject, body
}

func shortID(o *models.Order) string {
	return strings.SplitN(o.ID.String(), "-", 2)[0]
}

// OrderNotifier mails the customer and the shop administrators about one order.
type OrderNotifier struct {
	Sender Sender
	Admins []string
}

// OrderFinalized attempts both mails even when one of them fails.
func (n *OrderNotifier) OrderFinalized(ctx context.Context, o *models.Order) error {
	var errs []error

	subject, body := OrderConfirmation(o)
	if err := n.Sender.Notify(ctx, []string{o.CustomerEmail}, subject, body); err != nil {
		errs = append(errs, fmt.Errorf("notify customer: %w", err))
	}
	if len(n.Admins) > 0 {
		subject, body = AdminNewOrder(o)
		if err := n.Sender.Notify(ctx, n.Admins, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("notify admins: %w", err))
		}
	}
	return errors.Join(errs...)
}

// KafkaHandler consumes order_events and mails every order.finalized event.
// Other event types are acknowledged without action.
func (n *OrderNotifier) KafkaHandler(log *slog.Logger) mykafka.Handler {
	return func(ctx context.Context, m kafka.Message) error {
		env, err := mykafka.UnwrapPayload[mykafka.Envelope](m.Value)
		if err != nil {
			log.Warn("skip_malformed_event", "offset", m.Offset, "error", err)
			return nil
		}
		if env.EventType != mykafka.EventOrderFinalized {
			return nil
		}
		order, err := mykafka.UnwrapPayload[models.Order](env.Payload)
		if err != nil {
			log.Warn("skip_malformed_event", "event_id", env.EventID, "error", err)
			return nil
		}
		if err := n.OrderFinalized(ctx, &order); err != nil {
			return err
		}
		log.Info("order_notified", "order_id", order.ID, "event_id", env.EventID)
		return nil
	}
}

package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/sirupsen/logrus"
)

type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// Deliverer pushes a stored notification to an outside channel (chat, email, push).
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// Dispatcher persists a notification and then hands it to the deliverer.
// It satisfies Sink, so it can be used directly when no stream is configured.
type Dispatcher struct {
	Store     Store
	Deliverer Deliverer
	Logger    *logrus.Logger
}

func (d *Dispatcher) Send(ctx context.Context, n models.Notification) error {
	return d.Dispatch(ctx, n)
}

func (d *Dispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	if d.Store != nil {
		if err := d.Store.Insert(ctx, &n); err != nil {
			return fmt.Errorf("store notification: %w", err)
		}
	}
	if d.Deliverer == nil {
		return nil
	}
	if err := d.Deliverer.Deliver(ctx, n); err != nil {
		// stored rows stay readable in-app even when the outside channel fails
		if d.Logger != nil {
			d.Logger.WithError(err).WithFields(logrus.Fields{
				"notification_id": n.ID,
				"recipient_id":    n.RecipientID,
			}).Warn("notification delivery failed")
		}
	}
	return nil
}

type LogDeliverer struct {
	Logger *logrus.Logger
}

func (l LogDeliverer) Deliver(_ context.Context, n models.Notification) error {
	l.Logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"recipient_id":    n.RecipientID,
		"kind":            n.Kind,
	}).Info(n.Title)
	return nil
}

// DiscordDeliverer posts notifications to a Discord channel webhook.
type DiscordDeliverer struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

func NewDiscordDeliverer(webhookID, token string) (*DiscordDeliverer, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &DiscordDeliverer{session: s, webhookID: webhookID, token: token}, nil
}

func (d *DiscordDeliverer) Deliver(_ context.Context, n models.Notification) error {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(n.Title)
	b.WriteString("**")
	if n.Body != "" {
		b.WriteString("\n")
		b.WriteString(n.Body)
	}
	_, err := d.session.WebhookExecute(d.webhookID, d.token, false, &discordgo.WebhookParams{
		Content: b.String(),
	})
	return err
}

// MultiDeliverer fans a notification out to every deliverer and returns the first error.
type MultiDeliverer []Deliverer

func (m MultiDeliverer) Deliver(ctx context.Context, n models.Notification) error {
	var first error
	for _, d := range m {
		if err := d.Deliver(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}

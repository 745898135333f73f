package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	domain "github.com/maplecart/api/internal/domain"
)

var (
	// ErrNotificationInvalidInput indicates the order lacks a recipient address.
	ErrNotificationInvalidInput = errors.New("notification service: invalid input")
)

const orderConfirmationTemplate = `<h1>Thanks for your order, {{.OrderNumber}}</h1>
<p>We received your order and will start preparing it shortly.</p>
<table>
{{- range .Items}}
  <tr><td>{{.Name}}{{if .VariantName}} ({{.VariantName}}){{end}}</td><td>x{{.Quantity}}</td><td>{{money .Total $.Currency}}</td></tr>
{{- end}}
</table>
<p>Total: <strong>{{money .Totals.Total .Currency}}</strong></p>`

const orderStatusTemplate = `<h1>Order {{.OrderNumber}} is now {{.Status}}</h1>
{{- if eq .Status "shipped"}}
<p>Your order is on its way.</p>
{{- else if eq .Status "delivered"}}
<p>Your order has been delivered. Enjoy!</p>
{{- else if eq .Status "canceled"}}
<p>Your order was canceled{{with .CancelReason}}: {{.}}{{end}}.</p>
{{- else}}
<p>We will let you know when it ships.</p>
{{- end}}`

// NotificationServiceDeps bundles constructor inputs for the notification service.
type NotificationServiceDeps struct {
	Publisher EmailJobPublisher
	Clock     func() time.Time
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type notificationService struct {
	publisher    EmailJobPublisher
	confirmation *template.Template
	statusUpdate *template.Template
	clock        func() time.Time
	logger       func(context.Context, string, map[string]any)
}

// NewNotificationService constructs the notification service. Emails are
// rendered here and handed to the background queue; the mail worker owns
// delivery and retries.
func NewNotificationService(deps NotificationServiceDeps) (NotificationService, error) {
	if deps.Publisher == nil {
		return nil, errors.New("notification service: publisher is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	funcs := template.FuncMap{"money": formatMoney}
	confirmation, err := template.New("order_confirmation").Funcs(funcs).Parse(orderConfirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("notification service: parse confirmation template: %w", err)
	}
	statusUpdate, err := template.New("order_status").Funcs(funcs).Parse(orderStatusTemplate)
	if err != nil {
		return nil, fmt.Errorf("notification service: parse status template: %w", err)
	}

	return &notificationService{
		publisher:    deps.Publisher,
		confirmation: confirmation,
		statusUpdate: statusUpdate,
		clock:        func() time.Time { return clock().UTC() },
		logger:       logger,
	}, nil
}

func (s *notificationService) SendOrderConfirmation(ctx context.Context, order domain.Order) error {
	return s.send(ctx, order, s.confirmation, "order_confirmation",
		fmt.Sprintf("Order %s confirmed", order.OrderNumber))
}

func (s *notificationService) SendOrderStatusUpdate(ctx context.Context, order domain.Order) error {
	return s.send(ctx, order, s.statusUpdate, "order_status",
		fmt.Sprintf("Order %s update: %s", order.OrderNumber, order.Status))
}

func (s *notificationService) send(ctx context.Context, order domain.Order, tmpl *template.Template, name, subject string) error {
	to := strings.TrimSpace(order.ContactEmail)
	if to == "" {
		return fmt.Errorf("%w: order %s has no contact email", ErrNotificationInvalidInput, order.ID)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, order); err != nil {
		return fmt.Errorf("notification service: render %s: %w", name, err)
	}

	messageID, err := s.publisher.PublishEmailJob(ctx, EmailJobMessage{
		To:       to,
		Subject:  subject,
		Template: name,
		HTMLBody: body.String(),
		Payload: map[string]any{
			"orderId":     order.ID,
			"orderNumber": order.OrderNumber,
			"status":      string(order.Status),
		},
		QueuedAt: s.clock(),
	})
	if err != nil {
		return err
	}
	s.logger(ctx, "notifications.email.enqueued", map[string]any{
		"messageId": messageID,
		"template":  name,
		"orderId":   order.ID,
	})
	return nil
}

// formatMoney renders minor units as a decimal amount with the currency code,
// e.g. 5400 USD -> "54.00 USD".
func formatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

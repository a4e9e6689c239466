package orders

import (
	"context"

	"brista-coffee/database"
	"brista-coffee/models"
	"brista-coffee/notify"
)

// sendReady mails the pickup notice when quota allows. It reports whether the
// email went out and was flagged on the order.
func (e *Engine) sendReady(ctx context.Context, order models.Order) bool {
	if order.Email_sent_ready {
		return false
	}
	subject, html, err := notify.ReadyEmail(order)
	if err != nil {
		e.log.Error("Ready email not rendered", "order_id", order.Order_id, "error", err)
		return false
	}
	return e.deliver(ctx, order, database.EmailReady, subject, html)
}

// sendRating runs when the feedback delay elapses. The order is reloaded so a
// rating or flag written in the meantime is respected.
func (e *Engine) sendRating(ctx context.Context, orderID string) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		e.log.Warn("Rating email skipped, order not loaded", "order_id", orderID, "error", err)
		return
	}
	if order.Status != models.StatusCompleted || order.Email_sent_rating || order.Rating != nil {
		return
	}
	subject, html, err := notify.RatingEmail(order, e.baseURL)
	if err != nil {
		e.log.Error("Rating email not rendered", "order_id", orderID, "error", err)
		return
	}
	e.deliver(ctx, order, database.EmailRating, subject, html)
}

func (e *Engine) deliver(ctx context.Context, order models.Order, flag, subject, html string) bool {
	if order.Customer_email == nil || *order.Customer_email == "" {
		e.log.Debug("No email on order", "order_id", order.Order_id, "kind", flag)
		return false
	}
	if !e.quota.CanSend(ctx) {
		e.log.Warn("Daily email quota reached, notification skipped", "order_id", order.Order_id, "kind", flag)
		return false
	}
	if err := e.mailer.Send(ctx, *order.Customer_email, subject, html); err != nil {
		e.log.Warn("Email send failed", "order_id", order.Order_id, "kind", flag, "error", err)
		return false
	}
	if err := e.quota.RecordSent(ctx); err != nil {
		e.log.Warn("Email sent but not counted", "order_id", order.Order_id, "kind", flag, "error", err)
	}
	if err := e.orders.MarkEmailSent(ctx, order.Order_id, flag); err != nil {
		e.log.Warn("Email sent but flag not stored", "order_id", order.Order_id, "kind", flag, "error", err)
		return false
	}
	return true
}

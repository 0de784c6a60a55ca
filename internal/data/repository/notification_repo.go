package repository

import (
	"context"
	"fmt"

	"instructor-portal/internal/data/entity"
	"instructor-portal/pkg/database"

	"go.uber.org/zap"
)

// CheckoutNotificationRepository is the idempotency ledger for purchase confirmations
type CheckoutNotificationRepository interface {
	// Claim records the session; claimed is false when it was already recorded
	Claim(ctx context.Context, n *entity.CheckoutNotification) (claimed bool, err error)
	Release(ctx context.Context, sessionID string) error
}

type checkoutNotificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCheckoutNotificationRepository(db database.PgxIface, log *zap.Logger) CheckoutNotificationRepository {
	return &checkoutNotificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "checkout_notification")),
	}
}

func (r *checkoutNotificationRepository) Claim(ctx context.Context, n *entity.CheckoutNotification) (bool, error) {
	query := `
		INSERT INTO checkout_notifications (session_id, customer_email, amount_total, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, n.SessionID, n.CustomerEmail, n.AmountTotal, n.ProcessedAt)
	if err != nil {
		r.log.Error("Failed to claim checkout notification",
			zap.Error(err),
			zap.String("session_id", n.SessionID),
		)
		return false, fmt.Errorf("claim checkout notification %s: %w", n.SessionID, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *checkoutNotificationRepository) Release(ctx context.Context, sessionID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM checkout_notifications WHERE session_id = $1`, sessionID); err != nil {
		r.log.Error("Failed to release checkout notification",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("release checkout notification %s: %w", sessionID, err)
	}
	return nil
}

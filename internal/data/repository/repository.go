package repository

import (
	"instructor-portal/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Profile      ProfileRepository
	Product      ProductRepository
	Notification CheckoutNotificationRepository
	Cart         CartStorage
}

func NewRepository(db database.PgxIface, carts CartStorage, log *zap.Logger) *Repository {
	return &Repository{
		Profile:      NewProfileRepository(db, log),
		Product:      NewProductRepository(db, log),
		Notification: NewCheckoutNotificationRepository(db, log),
		Cart:         carts,
	}
}

package usecase

import (
	"instructor-portal/internal/data/repository"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Session  SessionStore
	Resolver ProfileResolver
	Gate     *Gate
	Auth     AuthService
	Product  ProductService
	Cart     CartService
	Checkout CheckoutService
	Admin    AdminService
	Contact  ContactService
	Resource ResourceService
}

func NewService(
	repo *repository.Repository,
	providers Providers,
	recorder metrics.Recorder,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	carts := NewCartStore(repo.Cart, log)
	products := NewProductService(repo.Product, providers.Payment, log)

	return &Service{
		Session:  NewSessionStore(providers.Identity, log),
		Resolver: NewProfileResolver(repo.Profile, recorder, config.Auth.ResolveTimeout, log),
		Gate: NewGate(
			config.Auth.AdminEmails,
			config.Auth.LoginPath,
			config.Auth.LandingPath,
			!config.App.IsProduction() && config.Auth.AdminOverrideKeyHash != "",
		),
		Auth:     NewAuthService(providers.Identity, log),
		Product:  products,
		Cart:     NewCartService(carts, products, log),
		Checkout: NewCheckoutService(carts, repo.Notification, providers.Payment, providers.Mailer, recorder, config, log),
		Admin:    NewAdminService(repo.Profile, providers.Identity, providers.Mailer, recorder, config, log),
		Contact:  NewContactService(providers.Mailer, recorder, config, log),
		Resource: NewResourceService(providers.Content, config.Content.ResourcesPageID, log),
	}
}

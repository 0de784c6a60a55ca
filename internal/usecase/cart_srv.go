package usecase

import (
	"context"

	"instructor-portal/internal/dto/response"

	"go.uber.org/zap"
)

// CartService applies cart operations for a browsing session and persists after each change.
type CartService interface {
	Get(ctx context.Context, cartID string) (*response.CartResponse, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int, isInstructor bool) (*response.CartResponse, error)
	UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*response.CartResponse, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*response.CartResponse, error)
	Clear(ctx context.Context, cartID string) error
}

type cartService struct {
	store    *CartStore
	products ProductService
	log      *zap.Logger
}

func NewCartService(store *CartStore, products ProductService, log *zap.Logger) CartService {
	return &cartService{
		store:    store,
		products: products,
		log:      log.With(zap.String("service", "cart")),
	}
}

func (s *cartService) Get(ctx context.Context, cartID string) (*response.CartResponse, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return cartResponse(cart), nil
}

func (s *cartService) AddItem(ctx context.Context, cartID, productID string, quantity int, isInstructor bool) (*response.CartResponse, error) {
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, newValidationError("quantity must be between 1 and 100", map[string]string{"quantity": "out of range"})
	}

	ref, product, err := s.products.Ref(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.RequiresInstructor && !isInstructor {
		return nil, ErrInstructorOnly
	}

	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if !cart.Add(*ref, quantity) {
		return cartResponse(cart), nil
	}

	if err := s.store.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}

	s.log.Debug("Cart item added",
		zap.String("cart_id", cartID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return cartResponse(cart), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*response.CartResponse, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if !cart.SetQuantity(productID, quantity) {
		return cartResponse(cart), nil
	}

	if err := s.store.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return cartResponse(cart), nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID string) (*response.CartResponse, error) {
	cart, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if !cart.Remove(productID) {
		return cartResponse(cart), nil
	}

	if err := s.store.Save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return cartResponse(cart), nil
}

func (s *cartService) Clear(ctx context.Context, cartID string) error {
	return s.store.Clear(ctx, cartID)
}

func cartResponse(cart *Cart) *response.CartResponse {
	res := response.CartToResponse(cart.Items(), cart.Count(), cart.Total())
	return &res
}

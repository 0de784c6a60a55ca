package usecase

import (
	"context"
	"fmt"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"
	"instructor-portal/internal/dto/response"

	"go.uber.org/zap"
)

type ProductService interface {
	List(ctx context.Context) ([]response.ProductResponse, error)
	Get(ctx context.Context, id string) (*response.ProductResponse, error)
	// Ref resolves a product into the snapshot stored in carts
	Ref(ctx context.Context, id string) (*entity.ProductRef, *entity.Product, error)
}

type productService struct {
	products repository.ProductRepository
	payment  PaymentProvider
	log      *zap.Logger
}

func NewProductService(products repository.ProductRepository, payment PaymentProvider, log *zap.Logger) ProductService {
	return &productService{
		products: products,
		payment:  payment,
		log:      log.With(zap.String("service", "product")),
	}
}

func (s *productService) List(ctx context.Context) ([]response.ProductResponse, error) {
	products, err := s.products.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	out := make([]response.ProductResponse, 0, len(products))
	for _, p := range products {
		price, err := s.resolvePrice(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, toProductResponse(p, price))
	}

	return out, nil
}

func (s *productService) Get(ctx context.Context, id string) (*response.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}

	price, err := s.resolvePrice(ctx, p)
	if err != nil {
		return nil, err
	}

	res := toProductResponse(p, price)
	return &res, nil
}

func (s *productService) Ref(ctx context.Context, id string) (*entity.ProductRef, *entity.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return nil, nil, ErrNotFound
	}

	price, err := s.resolvePrice(ctx, p)
	if err != nil {
		return nil, nil, err
	}

	return &entity.ProductRef{
		ID:         p.ID,
		Name:       p.Name,
		UnitAmount: price.UnitAmount,
		Currency:   price.Currency,
		PriceID:    p.PriceID,
	}, p, nil
}

func (s *productService) resolvePrice(ctx context.Context, p *entity.Product) (*entity.Price, error) {
	price, err := s.payment.RetrievePrice(ctx, p.PriceID)
	if err != nil {
		s.log.Error("Failed to resolve price",
			zap.Error(err),
			zap.String("product_id", p.ID),
			zap.String("price_id", p.PriceID),
		)
		return nil, newUpstreamError("payment", "could not load product prices", err)
	}
	return price, nil
}

func toProductResponse(p *entity.Product, price *entity.Price) response.ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return response.ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Images:             images,
		PriceID:            p.PriceID,
		UnitAmount:         price.UnitAmount,
		Currency:           price.Currency,
		RequiresInstructor: p.RequiresInstructor,
	}
}

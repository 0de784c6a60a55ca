package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"

	"go.uber.org/zap"
)

// Cart is an ordered list of items, unique by product id, with every quantity >= 1.
type Cart struct {
	items []entity.CartItem
}

func NewCart(items ...entity.CartItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.Add(item.Product, item.Quantity)
	}
	return c
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []entity.CartItem {
	out := make([]entity.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Count is the number of units across all items.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Add increments an existing item or appends a new one. quantity < 1 is ignored.
func (c *Cart) Add(product entity.ProductRef, quantity int) bool {
	if quantity < 1 {
		return false
	}

	if i := c.index(product.ID); i >= 0 {
		c.items[i].Quantity += quantity
		return true
	}

	c.items = append(c.items, entity.CartItem{Product: product, Quantity: quantity})
	return true
}

func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// SetQuantity overwrites the quantity. quantity < 1 and unknown products are ignored;
// removal goes through Remove.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity < 1 {
		return false
	}

	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.items[i].Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.items = nil
}

// Total is recomputed on every call, in minor units.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

func (c *Cart) index(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []entity.CartItem{}
	}
	return json.Marshal(items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []entity.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	c.items = nil
	for _, item := range items {
		if item.Product.ID == "" {
			continue
		}
		c.Add(item.Product, item.Quantity)
	}
	return nil
}

// CartStore rehydrates and persists carts by browsing-session id.
type CartStore struct {
	storage repository.CartStorage
	log     *zap.Logger
}

func NewCartStore(storage repository.CartStorage, log *zap.Logger) *CartStore {
	return &CartStore{
		storage: storage,
		log:     log.With(zap.String("service", "cart_store")),
	}
}

// Load returns the stored cart. Missing or unparsable snapshots yield an empty cart.
func (s *CartStore) Load(ctx context.Context, cartID string) (*Cart, error) {
	data, err := s.storage.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := NewCart()
	if len(data) == 0 {
		return cart, nil
	}

	if err := json.Unmarshal(data, cart); err != nil {
		s.log.Warn("Discarding unparsable cart snapshot",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		return NewCart(), nil
	}

	return cart, nil
}

// Save writes the full snapshot. An empty cart removes the stored entry.
func (s *CartStore) Save(ctx context.Context, cartID string, cart *Cart) error {
	if cart.IsEmpty() {
		return s.Clear(ctx, cartID)
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := s.storage.Save(ctx, cartID, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, cartID string) error {
	if err := s.storage.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

var (
	// ErrInvalidItems indicates the provided catalog items violate validation rules.
	ErrInvalidItems = errors.New("catalog items need unique non-empty ids and finite non-negative weights and values")
)

var defaultItems = []shelving.Item{
	{ID: "978-0307474278", Title: "The Da Vinci Code", Weight: 0.5, Value: 40},
	{ID: "978-0439708180", Title: "Harry Potter and the Sorcerer's Stone", Weight: 0.7, Value: 55},
	{ID: "978-0544003415", Title: "The Lord of the Rings", Weight: 2.4, Value: 120},
	{ID: "978-0060883287", Title: "One Hundred Years of Solitude", Weight: 0.8, Value: 48},
	{ID: "978-0262033848", Title: "Introduction to Algorithms", Weight: 3.3, Value: 210},
	{ID: "978-0131103627", Title: "The C Programming Language", Weight: 0.9, Value: 85},
	{ID: "978-0321751041", Title: "The Art of Computer Programming", Weight: 5.2, Value: 400},
	{ID: "978-1400079988", Title: "War and Peace", Weight: 1.6, Value: 35},
	{ID: "978-0140449136", Title: "Crime and Punishment", Weight: 0.6, Value: 22},
	{ID: "978-0743273565", Title: "The Great Gatsby", Weight: 0.3, Value: 18},
}

// Catalog supplies the items the shelf algorithms work on.
type Catalog interface {
	Items(ctx context.Context) ([]shelving.Item, error)
	Replace(ctx context.Context, items []shelving.Item) error
}

// MemoryCatalog keeps catalog items in-memory and guards access with a RWMutex.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []shelving.Item
}

// NewMemoryCatalog initialises a catalog with a copy of the default items.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		items: cloneItems(defaultItems),
	}
}

// DefaultItems returns a copy of the built-in sample catalog.
func DefaultItems() []shelving.Item {
	return cloneItems(defaultItems)
}

// Items returns a defensive copy of the catalog in insertion order.
func (c *MemoryCatalog) Items(_ context.Context) ([]shelving.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return cloneItems(c.items), nil
}

// Replace validates, normalises, and stores the provided items.
func (c *MemoryCatalog) Replace(_ context.Context, items []shelving.Item) error {
	normalized, err := NormalizeItems(items)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = normalized
	c.mu.Unlock()

	return nil
}

// NormalizeItems trims identifiers and titles, falls back to the identifier
// when the title is empty, and rejects duplicates or invalid amounts.
func NormalizeItems(items []shelving.Item) ([]shelving.Item, error) {
	out := make([]shelving.Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		item.Title = strings.TrimSpace(item.Title)
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidItems, i)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidItems, item.ID)
		}
		if err := shelving.ValidateItems([]shelving.Item{item}); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidItems, err)
		}
		if item.Title == "" {
			item.Title = item.ID
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

func cloneItems(src []shelving.Item) []shelving.Item {
	if len(src) == 0 {
		return []shelving.Item{}
	}

	out := make([]shelving.Item, len(src))
	copy(out, src)
	return out
}

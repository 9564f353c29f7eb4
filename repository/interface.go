package repository

import (
	"context"

	"tshirt-bundle/models"
)

// CardRepositoryInterface defines the contract for loading the product cards
// shown on a bundle page
type CardRepositoryInterface interface {
	ListCards(ctx context.Context, bundleID string) ([]models.Card, error)
}

// InstanceStore keeps live widget instances keyed by ID
type InstanceStore[T any] interface {
	NewID() string
	Put(id string, instance T)
	Get(id string) (T, bool)
	Delete(id string)
	Count() int
}

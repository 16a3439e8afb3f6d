package repositories

import (
	"context"

	"productapi/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update overwrites name, slug and quantity of the row with product.ID
	// and refreshes its updated_at.
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

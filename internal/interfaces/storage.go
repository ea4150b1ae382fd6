package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/lustro/internal/models"
)

// ErrPageNotFound is returned when a page ID has no stored record
var ErrPageNotFound = errors.New("page not found")

// ListOptions controls pagination for list operations
type ListOptions struct {
	Limit  int
	Offset int
}

// PageStorage - interface for crawled page persistence
type PageStorage interface {
	// CRUD operations
	SavePage(ctx context.Context, page *models.Page) error
	GetPage(ctx context.Context, id string) (*models.Page, error)
	GetPageByURL(ctx context.Context, url string) (*models.Page, error)
	// UpdatePage merges the non-nil fields of update into the stored record.
	// Last write wins per field.
	UpdatePage(ctx context.Context, id string, update *models.PageUpdate) error
	DeletePage(ctx context.Context, id string) error

	// List operations
	ListPages(ctx context.Context, opts *ListOptions) ([]*models.Page, error)

	// Stats operations
	CountPages(ctx context.Context) (int, error)

	// Bulk operations
	ClearAll(ctx context.Context) error
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	PageStorage() PageStorage
	DB() interface{}
	Close() error
}

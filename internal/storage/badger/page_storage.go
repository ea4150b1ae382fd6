package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// PageStorage implements the PageStorage interface for Badger
type PageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPageStorage creates a new PageStorage instance
func NewPageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PageStorage {
	return &PageStorage{
		db:     db,
		logger: logger,
	}
}

// SavePage upserts a page record. Last write wins per id.
func (s *PageStorage) SavePage(ctx context.Context, page *models.Page) error {
	if page.ID == "" {
		return fmt.Errorf("page ID is required")
	}

	now := time.Now()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now

	if err := s.db.Store().Upsert(page.ID, page); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// GetPage retrieves a page record by id
func (s *PageStorage) GetPage(ctx context.Context, id string) (*models.Page, error) {
	var page models.Page
	if err := s.db.Store().Get(id, &page); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}

// GetPageByURL retrieves the page record for a source URL
func (s *PageStorage) GetPageByURL(ctx context.Context, url string) (*models.Page, error) {
	var pages []models.Page
	err := s.db.Store().Find(&pages, badgerhold.Where("URL").Eq(url))
	if err != nil {
		return nil, fmt.Errorf("failed to find page by URL: %w", err)
	}
	if len(pages) == 0 {
		return nil, interfaces.ErrPageNotFound
	}
	return &pages[0], nil
}

// UpdatePage merges the non-nil fields of update into the stored record
func (s *PageStorage) UpdatePage(ctx context.Context, id string, update *models.PageUpdate) error {
	page, err := s.GetPage(ctx, id)
	if err != nil {
		return err
	}

	update.Apply(page)
	page.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(page.ID, page); err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	return nil
}

// DeletePage removes a page record. Deleting an absent id is a no-op.
func (s *PageStorage) DeletePage(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Page{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}

// ListPages returns stored pages with optional pagination
func (s *PageStorage) ListPages(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Page, error) {
	query := badgerhold.Where("ID").Ne("") // Select all

	if opts != nil {
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var pages []models.Page
	if err := s.db.Store().Find(&pages, query); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	result := make([]*models.Page, len(pages))
	for i := range pages {
		result[i] = &pages[i]
	}
	return result, nil
}

// CountPages returns the number of stored page records
func (s *PageStorage) CountPages(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Page{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return int(count), nil
}

// ClearAll removes every page record
func (s *PageStorage) ClearAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.Page{}, badgerhold.Where("ID").Ne("")); err != nil {
		return fmt.Errorf("failed to clear pages: %w", err)
	}
	return nil
}

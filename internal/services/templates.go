package services

import (
	"context"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

// TemplateService manages recurring-template definitions. Templates
// are append-and-delete only; deleting one leaves its past postings in
// the ledger untouched.
type TemplateService struct {
	storage *storage.SQLiteRepository
}

func NewTemplateService(storage *storage.SQLiteRepository) *TemplateService {
	return &TemplateService{storage: storage}
}

func (s *TemplateService) CreateTemplate(ctx context.Context, rt core.RecurringTemplate) (int64, error) {
	if err := rt.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateTemplate(ctx, rt)
	if err != nil {
		return 0, fmt.Errorf("create template: %w", err)
	}
	return id, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *TemplateService) Templates(ctx context.Context) ([]core.RecurringTemplate, error) {
	return s.storage.ListTemplates(ctx)
}

// CategoryService manages the name-only category registry. Protected
// entries back system-generated postings and cannot be removed.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	if err := s.storage.CreateCategory(ctx, name); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, name string) error {
	return s.storage.DeleteCategory(ctx, name)
}

package testutil

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/forgecommerce/catalog/internal/services/catalog"
	"github.com/forgecommerce/catalog/internal/services/category"
)

// MemStore is an in-memory implementation of the category and catalog
// persistence ports with the same uniqueness and ordering semantics as
// the SQL schema. It lets service tests run without a database.
type MemStore struct {
	mu         sync.Mutex
	categories map[uuid.UUID]category.Category
	catalogs   map[uuid.UUID]catalog.Catalog

	// BeforeCategoryInsert and BeforeCatalogInsert run at the start of
	// the corresponding Insert call, outside the lock. Tests use them to
	// interleave a competing write between the slug probe and the insert.
	BeforeCategoryInsert func()
	BeforeCatalogInsert  func()
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		categories: make(map[uuid.UUID]category.Category),
		catalogs:   make(map[uuid.UUID]catalog.Catalog),
	}
}

// Categories returns the category persistence port.
func (m *MemStore) Categories() *MemCategoryStore { return &MemCategoryStore{m} }

// Catalogs returns the catalog persistence port.
func (m *MemStore) Catalogs() *MemCatalogStore { return &MemCatalogStore{m} }

// PutCategory stores a category directly, bypassing all checks.
func (m *MemStore) PutCategory(c category.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

// PutCatalog stores a catalog item directly, bypassing all checks.
func (m *MemStore) PutCatalog(c catalog.Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[c.ID] = c
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MemCategoryStore implements category.Store over a MemStore.
type MemCategoryStore struct{ m *MemStore }

var _ category.Store = (*MemCategoryStore)(nil)

func (s *MemCategoryStore) Get(ctx context.Context, id uuid.UUID) (category.Category, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.categories[id]
	if !ok {
		return category.Category{}, category.ErrNotFound
	}
	return c, nil
}

func (s *MemCategoryStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	_, ok := s.m.categories[id]
	return ok, nil
}

func (s *MemCategoryStore) SlugExists(ctx context.Context, parentID *uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	return s.slugExistsLocked(parentID, slug, excludeID), nil
}

func (s *MemCategoryStore) slugExistsLocked(parentID *uuid.UUID, slug string, excludeID uuid.UUID) bool {
	for _, c := range s.m.categories {
		if c.ID != excludeID && sameParent(c.ParentID, parentID) && c.Slug == slug {
			return true
		}
	}
	return false
}

func (s *MemCategoryStore) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, c := range s.m.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemCategoryStore) HasCatalogs(ctx context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, c := range s.m.catalogs {
		if c.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemCategoryStore) List(ctx context.Context, filter category.Filter) ([]category.Category, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var matches []category.Category
	for _, c := range s.m.categories {
		if filter.ParentID != nil && !sameParent(c.ParentID, filter.ParentID) {
			continue
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			if !containsFold(c.Name, q) && !containsFold(c.Slug, q) {
				continue
			}
		}
		matches = append(matches, c)
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !sameParent(a.ParentID, b.ParentID) {
			if a.ParentID == nil {
				return true
			}
			if b.ParentID == nil {
				return false
			}
			return bytes.Compare(a.ParentID[:], b.ParentID[:]) < 0
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})

	total := int64(len(matches))
	return pageSlice(matches, filter.Page, filter.Size), total, nil
}

func (s *MemCategoryStore) Insert(ctx context.Context, cat category.Category) error {
	if s.m.BeforeCategoryInsert != nil {
		s.m.BeforeCategoryInsert()
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if cat.ParentID != nil {
		if _, ok := s.m.categories[*cat.ParentID]; !ok {
			return category.ErrParentNotFound
		}
	}
	if s.slugExistsLocked(cat.ParentID, cat.Slug, cat.ID) {
		return category.ErrSlugTaken
	}

	s.m.categories[cat.ID] = cat
	return nil
}

func (s *MemCategoryStore) Update(ctx context.Context, cat category.Category) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.categories[cat.ID]; !ok {
		return category.ErrNotFound
	}
	if cat.ParentID != nil {
		if _, ok := s.m.categories[*cat.ParentID]; !ok {
			return category.ErrParentNotFound
		}
	}
	if s.slugExistsLocked(cat.ParentID, cat.Slug, cat.ID) {
		return category.ErrSlugTaken
	}

	s.m.categories[cat.ID] = cat
	return nil
}

func (s *MemCategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.categories[id]; !ok {
		return false, nil
	}
	for _, c := range s.m.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return false, category.ErrHasChildren
		}
	}
	for _, c := range s.m.catalogs {
		if c.CategoryID == id {
			return false, category.ErrHasCatalogs
		}
	}

	delete(s.m.categories, id)
	return true, nil
}

// MemCatalogStore implements catalog.Store over a MemStore.
type MemCatalogStore struct{ m *MemStore }

var _ catalog.Store = (*MemCatalogStore)(nil)

func (s *MemCatalogStore) Get(ctx context.Context, id uuid.UUID) (catalog.Catalog, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.catalogs[id]
	if !ok {
		return catalog.Catalog{}, catalog.ErrNotFound
	}
	return s.withCategoryNameLocked(c), nil
}

func (s *MemCatalogStore) withCategoryNameLocked(c catalog.Catalog) catalog.Catalog {
	if owner, ok := s.m.categories[c.CategoryID]; ok {
		c.CategoryName = owner.Name
	}
	return c
}

func (s *MemCatalogStore) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	_, ok := s.m.categories[id]
	return ok, nil
}

func (s *MemCatalogStore) CodeExists(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	return s.codeExistsLocked(code, excludeID), nil
}

func (s *MemCatalogStore) codeExistsLocked(code string, excludeID uuid.UUID) bool {
	for _, c := range s.m.catalogs {
		if c.ID != excludeID && c.Code == code {
			return true
		}
	}
	return false
}

func (s *MemCatalogStore) SlugExists(ctx context.Context, categoryID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	return s.slugExistsLocked(categoryID, slug, excludeID), nil
}

func (s *MemCatalogStore) slugExistsLocked(categoryID uuid.UUID, slug string, excludeID uuid.UUID) bool {
	for _, c := range s.m.catalogs {
		if c.ID != excludeID && c.CategoryID == categoryID && c.Slug == slug {
			return true
		}
	}
	return false
}

func (s *MemCatalogStore) List(ctx context.Context, filter catalog.Filter) ([]catalog.Catalog, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	var matches []catalog.Catalog
	for _, c := range s.m.catalogs {
		if filter.CategoryID != nil && c.CategoryID != *filter.CategoryID {
			continue
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			if !containsFold(c.Name, q) && !containsFold(c.Slug, q) && !containsFold(c.Code, q) {
				continue
			}
		}
		if filter.MinPrice != nil && c.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && c.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		matches = append(matches, s.withCategoryNameLocked(c))
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.CategoryID != b.CategoryID {
			return bytes.Compare(a.CategoryID[:], b.CategoryID[:]) < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})

	total := int64(len(matches))
	return pageSlice(matches, filter.Page, filter.Size), total, nil
}

func (s *MemCatalogStore) Insert(ctx context.Context, item catalog.Catalog) error {
	if s.m.BeforeCatalogInsert != nil {
		s.m.BeforeCatalogInsert()
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.categories[item.CategoryID]; !ok {
		return catalog.ErrCategoryNotFound
	}
	if s.codeExistsLocked(item.Code, item.ID) {
		return catalog.ErrCodeTaken
	}
	if s.slugExistsLocked(item.CategoryID, item.Slug, item.ID) {
		return catalog.ErrSlugTaken
	}

	item.CategoryName = ""
	s.m.catalogs[item.ID] = item
	return nil
}

func (s *MemCatalogStore) Update(ctx context.Context, item catalog.Catalog) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.catalogs[item.ID]; !ok {
		return catalog.ErrNotFound
	}
	if _, ok := s.m.categories[item.CategoryID]; !ok {
		return catalog.ErrCategoryNotFound
	}
	if s.codeExistsLocked(item.Code, item.ID) {
		return catalog.ErrCodeTaken
	}
	if s.slugExistsLocked(item.CategoryID, item.Slug, item.ID) {
		return catalog.ErrSlugTaken
	}

	item.CategoryName = ""
	s.m.catalogs[item.ID] = item
	return nil
}

func (s *MemCatalogStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.catalogs[id]; !ok {
		return false, nil
	}
	delete(s.m.catalogs, id)
	return true, nil
}

func pageSlice[T any](items []T, page, size int) []T {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}

	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

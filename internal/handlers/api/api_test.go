package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgecommerce/catalog/internal/handlers/api"
	"github.com/forgecommerce/catalog/internal/services/catalog"
	"github.com/forgecommerce/catalog/internal/services/category"
	"github.com/forgecommerce/catalog/internal/testutil"
)

func newTestServer() (*http.ServeMux, *testutil.MemStore) {
	mem := testutil.NewMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	categorySvc := category.NewService(mem.Categories(), logger)
	catalogSvc := catalog.NewService(mem.Catalogs(), logger)

	mux := http.NewServeMux()
	api.NewHandler(categorySvc, catalogSvc, logger).RegisterRoutes(mux)
	return mux, mem
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

type categoryBody struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	ParentID  *string `json:"parent_id"`
	SortOrder int32   `json:"sort_order"`
	IsActive  bool    `json:"is_active"`
}

type catalogBody struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	Slug         string  `json:"slug"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Price        string  `json:"price"`
	ImageURL     *string `json:"image_url"`
	IsActive     bool    `json:"is_active"`
}

type listBody struct {
	Data       json.RawMessage `json:"data"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int64           `json:"total"`
}

func createCategory(t *testing.T, mux *http.ServeMux, body map[string]any) categoryBody {
	t.Helper()

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/categories", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: got status %d: %s", rr.Code, rr.Body.String())
	}
	var c categoryBody
	decodeBody(t, rr, &c)
	return c
}

func createCatalog(t *testing.T, mux *http.ServeMux, body map[string]any) catalogBody {
	t.Helper()

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/catalogs", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create catalog item: got status %d: %s", rr.Code, rr.Body.String())
	}
	var c catalogBody
	decodeBody(t, rr, &c)
	return c
}

func TestCreateCategory(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Đồ uống"})

	if c.Slug != "do-uong" {
		t.Errorf("slug: got %q, want %q", c.Slug, "do-uong")
	}
	if !c.IsActive {
		t.Error("is_active should default to true when omitted")
	}
}

func TestCreateCategory_InvalidBody(t *testing.T) {
	mux, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestCreateCategory_BlankName(t *testing.T) {
	mux, _ := newTestServer()

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/categories", map[string]any{"name": "   "})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestCreateCategory_MissingParent(t *testing.T) {
	mux, _ := newTestServer()

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":      "Orphan",
		"parent_id": "7f0c2a6e-2c9b-4f4e-9ad3-0d5b7d9f1a00",
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestGetCategory(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})

	rr := doJSON(t, mux, http.MethodGet, "/api/v1/categories/"+c.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var got categoryBody
	decodeBody(t, rr, &got)
	if got.Name != "Drinks" || got.Slug != "drinks" {
		t.Errorf("unexpected category: %+v", got)
	}
}

func TestGetCategory_NotFound(t *testing.T) {
	mux, _ := newTestServer()

	rr := doJSON(t, mux, http.MethodGet, "/api/v1/categories/7f0c2a6e-2c9b-4f4e-9ad3-0d5b7d9f1a00", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestGetCategory_InvalidID(t *testing.T) {
	mux, _ := newTestServer()

	rr := doJSON(t, mux, http.MethodGet, "/api/v1/categories/not-a-uuid", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestUpdateCategory_SelfParent(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})

	rr := doJSON(t, mux, http.MethodPatch, "/api/v1/categories/"+c.ID, map[string]any{
		"name":      "Drinks",
		"parent_id": c.ID,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestDeleteCategory(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})

	rr := doJSON(t, mux, http.MethodDelete, "/api/v1/categories/"+c.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}

	// Deleting again is a no-op, still 204.
	rr = doJSON(t, mux, http.MethodDelete, "/api/v1/categories/"+c.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("repeat delete status: got %d, want 204", rr.Code)
	}
}

func TestDeleteCategory_WithChildrenConflicts(t *testing.T) {
	mux, _ := newTestServer()

	parent := createCategory(t, mux, map[string]any{"name": "Drinks"})
	createCategory(t, mux, map[string]any{"name": "Coffee", "parent_id": parent.ID})

	rr := doJSON(t, mux, http.MethodDelete, "/api/v1/categories/"+parent.ID, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rr.Code)
	}
}

func TestDeleteCategory_WithCatalogsConflicts(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})
	createCatalog(t, mux, map[string]any{
		"name": "Coffee", "code": "CF01", "category_id": c.ID, "price": "3.50",
	})

	rr := doJSON(t, mux, http.MethodDelete, "/api/v1/categories/"+c.ID, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rr.Code)
	}
}

func TestListCategories_Envelope(t *testing.T) {
	mux, _ := newTestServer()

	for i := 0; i < 12; i++ {
		createCategory(t, mux, map[string]any{"name": fmt.Sprintf("Category %02d", i)})
	}

	// Default page size is 10.
	rr := doJSON(t, mux, http.MethodGet, "/api/v1/categories", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var list listBody
	decodeBody(t, rr, &list)

	if list.Total != 12 || list.Page != 1 || list.TotalPages != 2 {
		t.Errorf("envelope: %+v", list)
	}
	var items []categoryBody
	if err := json.Unmarshal(list.Data, &items); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(items) != 10 {
		t.Errorf("page length: got %d, want 10", len(items))
	}

	rr = doJSON(t, mux, http.MethodGet, "/api/v1/categories?page=2&size=10", nil)
	decodeBody(t, rr, &list)
	if err := json.Unmarshal(list.Data, &items); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(items) != 2 || list.Page != 2 {
		t.Errorf("page 2: got %d items, page %d", len(items), list.Page)
	}
}

func TestCreateCatalog(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Đồ uống"})
	item := createCatalog(t, mux, map[string]any{
		"name":        "Cà phê sữa đá",
		"code":        "cf01",
		"category_id": c.ID,
		"price":       "3.50",
	})

	if item.Slug != "ca-phe-sua-da" {
		t.Errorf("slug: got %q, want %q", item.Slug, "ca-phe-sua-da")
	}
	if item.Code != "CF01" {
		t.Errorf("code: got %q, want %q", item.Code, "CF01")
	}
	if !item.IsActive {
		t.Error("is_active should default to true when omitted")
	}
}

func TestCreateCatalog_DuplicateCode(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})
	createCatalog(t, mux, map[string]any{
		"name": "Coffee", "code": "abc", "category_id": c.ID, "price": "3",
	})

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/catalogs", map[string]any{
		"name": "Tea", "code": "ABC", "category_id": c.ID, "price": "2",
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rr.Code)
	}
}

func TestCreateCatalog_NegativePrice(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/catalogs", map[string]any{
		"name": "Coffee", "code": "CF01", "category_id": c.ID, "price": "-1",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestCreateCatalog_MissingCategory(t *testing.T) {
	mux, _ := newTestServer()

	rr := doJSON(t, mux, http.MethodPost, "/api/v1/catalogs", map[string]any{
		"name": "Coffee", "code": "CF01",
		"category_id": "7f0c2a6e-2c9b-4f4e-9ad3-0d5b7d9f1a00", "price": "3",
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestGetCatalog_IncludesCategoryName(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Đồ uống"})
	item := createCatalog(t, mux, map[string]any{
		"name": "Coffee", "code": "CF01", "category_id": c.ID, "price": "3",
	})

	rr := doJSON(t, mux, http.MethodGet, "/api/v1/catalogs/"+item.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var got catalogBody
	decodeBody(t, rr, &got)
	if got.CategoryName != "Đồ uống" {
		t.Errorf("category_name: got %q, want %q", got.CategoryName, "Đồ uống")
	}
}

func TestListCatalogs_Filters(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})
	createCatalog(t, mux, map[string]any{"name": "Coffee", "code": "CF01", "category_id": c.ID, "price": "3"})
	createCatalog(t, mux, map[string]any{"name": "Tea", "code": "TE01", "category_id": c.ID, "price": "7"})

	rr := doJSON(t, mux, http.MethodGet, "/api/v1/catalogs?min_price=5", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var list listBody
	decodeBody(t, rr, &list)
	if list.Total != 1 {
		t.Errorf("min_price filter total: got %d, want 1", list.Total)
	}

	rr = doJSON(t, mux, http.MethodGet, "/api/v1/catalogs?q=cf01", nil)
	decodeBody(t, rr, &list)
	if list.Total != 1 {
		t.Errorf("q filter total: got %d, want 1", list.Total)
	}

	rr = doJSON(t, mux, http.MethodGet, "/api/v1/catalogs?min_price=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad min_price status: got %d, want 400", rr.Code)
	}
}

func TestUpdateCatalog(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})
	item := createCatalog(t, mux, map[string]any{
		"name": "Coffee", "code": "CF01", "category_id": c.ID, "price": "3",
	})

	rr := doJSON(t, mux, http.MethodPatch, "/api/v1/catalogs/"+item.ID, map[string]any{
		"name": "Iced Coffee", "code": "CF01", "category_id": c.ID, "price": "4",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got catalogBody
	decodeBody(t, rr, &got)
	if got.Slug != "iced-coffee" {
		t.Errorf("slug: got %q, want %q", got.Slug, "iced-coffee")
	}
}

func TestDeleteCatalog(t *testing.T) {
	mux, _ := newTestServer()

	c := createCategory(t, mux, map[string]any{"name": "Drinks"})
	item := createCatalog(t, mux, map[string]any{
		"name": "Coffee", "code": "CF01", "category_id": c.ID, "price": "3",
	})

	rr := doJSON(t, mux, http.MethodDelete, "/api/v1/catalogs/"+item.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}

	rr = doJSON(t, mux, http.MethodGet, "/api/v1/catalogs/"+item.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status after delete: got %d, want 404", rr.Code)
	}
}

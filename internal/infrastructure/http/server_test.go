package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type entity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Active   bool    `json:"active"`
	Quantity int     `json:"quantity"`
	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meterProvider := metricnoop.NewMeterProvider()
	meter := meterProvider.Meter("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	categories := service.NewCategoryService(memory.NewCategoryRepository(store, tracer, logger), tracer, meter, logger)
	products := service.NewProductService(memory.NewProductRepository(store, tracer, logger), tracer, meter, logger)

	s := NewServer(
		&config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		handler.NewCategoryHandler(categories, logger),
		handler.NewProductHandler(products, logger),
		meterProvider,
		logger,
	)
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestCategoryLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec, env := do(t, h, http.MethodPost, "/api/categories", `{"name":"Books"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Category created successfully", env.Message)
	books := decodeData[entity](t, env)
	assert.NotEmpty(t, books.ID)
	assert.Equal(t, "Books", books.Name)

	rec, env = do(t, h, http.MethodPost, "/api/categories", `{"name":"Books"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "The category Books already exists", env.Message)

	rec, env = do(t, h, http.MethodPut, "/api/categories/"+books.ID, `{"name":"Novels"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Novels", decodeData[entity](t, env).Name)

	rec, env = do(t, h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[[]entity](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, "Novels", list[0].Name)

	rec, _ = do(t, h, http.MethodDelete, "/api/categories/"+books.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodDelete, "/api/categories/"+books.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", env.Message)
}

func TestCategoryErrors(t *testing.T) {
	h := newTestHandler(t)

	testCases := []struct {
		name            string
		method          string
		target          string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "Create without body",
			method:          http.MethodPost,
			target:          "/api/categories",
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Please enter category details",
		},
		{
			name:            "Create with empty name",
			method:          http.MethodPost,
			target:          "/api/categories",
			body:            `{"name":""}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Category name is required",
		},
		{
			name:            "Create with invalid JSON",
			method:          http.MethodPost,
			target:          "/api/categories",
			body:            `{"name":`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid request body",
		},
		{
			name:            "Update with malformed id",
			method:          http.MethodPut,
			target:          "/api/categories/not-an-id",
			body:            `{"name":"Books"}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid category ID",
		},
		{
			name:            "Update unknown category",
			method:          http.MethodPut,
			target:          "/api/categories/3f1c1b9e-8a0e-4c55-9f55-1f3f5e0d2a11",
			body:            `{"name":"Books"}`,
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Category not found",
		},
		{
			name:            "Delete with malformed id",
			method:          http.MethodDelete,
			target:          "/api/categories/42",
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid category ID",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, h, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedMessage, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestProductScenario(t *testing.T) {
	h := newTestHandler(t)

	rec, env := do(t, h, http.MethodPost, "/api/categories", `{"name":"Books"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	books := decodeData[entity](t, env)

	rec, env = do(t, h, http.MethodPost, "/api/products",
		`{"name":"Widget","price":-1,"category":"`+books.ID+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Price must be a positive number", env.Message)

	rec, env = do(t, h, http.MethodPost, "/api/products",
		`{"name":"Widget Pro","price":19.99,"quantity":3,"category":"`+books.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	widget := decodeData[entity](t, env)
	assert.Equal(t, 19.99, widget.Price)
	assert.Equal(t, 3, widget.Quantity)
	assert.True(t, widget.Active)
	assert.Equal(t, books.ID, widget.Category.ID)
	assert.Equal(t, "Books", widget.Category.Name)

	rec, env = do(t, h, http.MethodPost, "/api/products",
		`{"name":"Gadget","price":5,"active":false,"category":"`+books.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	gadget := decodeData[entity](t, env)

	rec, env = do(t, h, http.MethodDelete, "/api/categories/"+books.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot delete category with associated products", env.Message)

	rec, env = do(t, h, http.MethodGet, "/api/products/"+widget.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Widget Pro", decodeData[entity](t, env).Name)

	rec, env = do(t, h, http.MethodGet, "/api/products?name=widget", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeData[[]entity](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, widget.ID, found[0].ID)

	rec, env = do(t, h, http.MethodGet, "/api/products?active=no", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found = decodeData[[]entity](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, gadget.ID, found[0].ID)

	rec, env = do(t, h, http.MethodPut, "/api/products/"+widget.ID, `{"price":25}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[entity](t, env)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, "Widget Pro", updated.Name)

	rec, env = do(t, h, http.MethodPut, "/api/products/"+widget.ID, `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Product name is required", env.Message)

	for _, id := range []string{widget.ID, gadget.ID} {
		rec, _ = do(t, h, http.MethodDelete, "/api/products/"+id, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/api/products/"+widget.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", env.Message)

	rec, _ = do(t, h, http.MethodDelete, "/api/categories/"+books.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductErrors(t *testing.T) {
	h := newTestHandler(t)

	testCases := []struct {
		name            string
		method          string
		target          string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "Create without required fields",
			method:          http.MethodPost,
			target:          "/api/products",
			body:            `{"name":"Widget"}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "name, price, and category are required fields",
		},
		{
			name:            "Create with text price",
			method:          http.MethodPost,
			target:          "/api/products",
			body:            `{"name":"Widget","price":"cheap","category":"3f1c1b9e-8a0e-4c55-9f55-1f3f5e0d2a11"}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Price must be a positive number",
		},
		{
			name:            "Create with unknown category",
			method:          http.MethodPost,
			target:          "/api/products",
			body:            `{"name":"Widget","price":1,"category":"3f1c1b9e-8a0e-4c55-9f55-1f3f5e0d2a11"}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid category ID. Please provide a valid category.",
		},
		{
			name:            "Create with mistyped field",
			method:          http.MethodPost,
			target:          "/api/products",
			body:            `{"name":42}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid request body",
		},
		{
			name:            "List with unknown key",
			method:          http.MethodGet,
			target:          "/api/products?color=red",
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid query parameters. Valid options are: category, active, name",
		},
		{
			name:            "Get with malformed id",
			method:          http.MethodGet,
			target:          "/api/products/abc",
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid product ID",
		},
		{
			name:            "Update unknown product",
			method:          http.MethodPut,
			target:          "/api/products/3f1c1b9e-8a0e-4c55-9f55-1f3f5e0d2a11",
			body:            `{"price":3}`,
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Product not found",
		},
		{
			name:            "Delete with malformed id",
			method:          http.MethodDelete,
			target:          "/api/products/abc",
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedMessage: "Invalid product ID",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, h, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedMessage, env.Message)
		})
	}
}

func TestEmptyListsRenderAsArrays(t *testing.T) {
	h := newTestHandler(t)

	for _, target := range []string{"/api/categories", "/api/products"} {
		rec, env := do(t, h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.JSONEq(t, `[]`, string(env.Data), target)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerTimingHeader(t *testing.T) {
	h := newTestHandler(t)

	rec, _ := do(t, h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Server-Timing"), "category-list")
}

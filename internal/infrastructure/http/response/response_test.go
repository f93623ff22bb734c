package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{err: domain.ErrInvalidProductPrice, expected: http.StatusUnprocessableEntity},
		{err: domain.CategoryExistsError("Books"), expected: http.StatusConflict},
		{err: domain.ErrCategoryInUse, expected: http.StatusConflict},
		{err: fmt.Errorf("wrapped: %w", domain.ErrProductNotFound), expected: http.StatusNotFound},
		{err: errors.New("connection refused"), expected: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, StatusFor(tc.err), tc.err.Error())
	}
}

func TestError(t *testing.T) {
	t.Run("Classified error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, domain.ErrCategoryNotFound, "Error updating category")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Category not found", body["message"])
		_, hasError := body["error"]
		assert.False(t, hasError)
	})

	t.Run("Internal error exposes cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, errors.New("db down"), "Error retrieving products")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Error retrieving products", body["message"])
		assert.Equal(t, "db down", body["error"])
	})
}

func TestSuccessKeepsEmptyList(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusOK, "Categories retrieved successfully", []string{})

	assert.JSONEq(t, `{"message":"Categories retrieved successfully","data":[]}`, rec.Body.String())
}

package service

import (
	"context"
	"testing"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		setup       func(t *testing.T, s *CategoryService)
		req         *dto.CategoryRequest
		expectedErr error
	}{
		{
			name: "Success",
			req:  &dto.CategoryRequest{Name: "Books"},
		},
		{
			name:        "Missing body",
			req:         nil,
			expectedErr: domain.ErrCategoryDetailsRequired,
		},
		{
			name: "Whitespace name accepted",
			req:  &dto.CategoryRequest{Name: "   "},
		},
		{
			name:        "Empty name",
			req:         &dto.CategoryRequest{},
			expectedErr: domain.ErrCategoryNameRequired,
		},
		{
			name: "Duplicate name",
			setup: func(t *testing.T, s *CategoryService) {
				_, err := s.CreateCategory(ctx, &dto.CategoryRequest{Name: "Books"})
				require.NoError(t, err)
			},
			req:         &dto.CategoryRequest{Name: "Books"},
			expectedErr: domain.ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			categories, _ := newTestServices(t)
			if tc.setup != nil {
				tc.setup(t, categories)
			}

			resp, err := categories.CreateCategory(ctx, tc.req)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.req.Name, resp.Name)
			assert.True(t, domain.IsValidID(resp.ID))
		})
	}
}

func TestDuplicateCategoryMessage(t *testing.T) {
	ctx := context.Background()
	categories, _ := newTestServices(t)

	_, err := categories.CreateCategory(ctx, &dto.CategoryRequest{Name: "Books"})
	require.NoError(t, err)
	_, err = categories.CreateCategory(ctx, &dto.CategoryRequest{Name: "Books"})
	require.Error(t, err)
	assert.Equal(t, "The category Books already exists", err.Error())
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	categories, _ := newTestServices(t)

	list, err := categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Len(t, list, 0)

	for _, name := range []string{"Books", "Games"} {
		_, err := categories.CreateCategory(ctx, &dto.CategoryRequest{Name: name})
		require.NoError(t, err)
	}

	list, err = categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	categories, _ := newTestServices(t)
	books, err := categories.CreateCategory(ctx, &dto.CategoryRequest{Name: "Books"})
	require.NoError(t, err)

	testCases := []struct {
		name        string
		id          string
		req         *dto.CategoryRequest
		expectedErr error
	}{
		{name: "Malformed id", id: "books", req: &dto.CategoryRequest{Name: "Novels"}, expectedErr: domain.ErrInvalidCategoryID},
		{name: "Missing name", id: books.ID, req: &dto.CategoryRequest{}, expectedErr: domain.ErrCategoryNameRequired},
		{name: "Not found", id: domain.NewID(), req: &dto.CategoryRequest{Name: "Novels"}, expectedErr: domain.ErrCategoryNotFound},
		{name: "Success", id: books.ID, req: &dto.CategoryRequest{Name: "Novels"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := categories.UpdateCategory(ctx, tc.id, tc.req)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, books.ID, resp.ID)
			assert.Equal(t, "Novels", resp.Name)
		})
	}
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	categories, products := newTestServices(t)

	books, err := categories.CreateCategory(ctx, &dto.CategoryRequest{Name: "Books"})
	require.NoError(t, err)
	empty, err := categories.CreateCategory(ctx, &dto.CategoryRequest{Name: "Empty"})
	require.NoError(t, err)
	_, err = products.CreateProduct(ctx, &dto.CreateProductRequest{Name: "Dune", Price: 9.5, Category: books.ID})
	require.NoError(t, err)

	_, err = categories.DeleteCategory(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidCategoryID)

	_, err = categories.DeleteCategory(ctx, books.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)

	deleted, err := categories.DeleteCategory(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, "Empty", deleted.Name)

	_, err = categories.DeleteCategory(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	list, err := categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

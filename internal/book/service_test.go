package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Query
		want Query
	}{
		{"defaults", Query{Q: "  tolkien "}, Query{Q: "tolkien", Sort: SortTitle, Order: "asc", Limit: DefaultLimit}},
		{"unknown sort and order", Query{Q: "x", Sort: "isbn", Order: "sideways"}, Query{Q: "x", Sort: SortTitle, Order: "asc", Limit: DefaultLimit}},
		{"rating desc", Query{Q: "x", Sort: SortRating, Order: "DESC", Limit: 5}, Query{Q: "x", Sort: SortRating, Order: "desc", Limit: 5}},
		{"limit clamped", Query{Q: "x", Limit: 500, Offset: -3}, Query{Q: "x", Sort: SortTitle, Order: "asc", Limit: MaxLimit}},
		{"negative limit", Query{Q: "x", Limit: -1, Offset: 20}, Query{Q: "x", Sort: SortTitle, Order: "asc", Limit: DefaultLimit, Offset: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestNewPage(t *testing.T) {
	q := Query{Limit: 10, Offset: 20}
	p := newPage(make([]Book, 10), 35, q)
	assert.True(t, p.HasMore)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, 3, p.CurrentPage)

	p = newPage(nil, 0, Query{Limit: 10})
	assert.NotNil(t, p.Books)
	assert.False(t, p.HasMore)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
}

func TestService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, 50)
	ctx := context.Background()

	t.Run("query too short", func(t *testing.T) {
		_, err := service.Search(ctx, Query{Q: " a "})
		assert.ErrorIs(t, err, ErrQueryTooShort)
	})

	t.Run("normalized query reaches the repository", func(t *testing.T) {
		want := Query{Q: "hobbit", Sort: SortTitle, Order: "asc", Limit: MaxLimit}
		mockRepo.EXPECT().Search(gomock.Any(), want).Return([]Book{{ID: "1"}}, 1, nil)

		page, err := service.Search(ctx, Query{Q: "hobbit", Sort: "bogus", Limit: 1000})
		require.NoError(t, err)
		assert.Len(t, page.Books, 1)
		assert.Equal(t, 1, page.Total)
		assert.False(t, page.HasMore)
	})

	t.Run("repository error", func(t *testing.T) {
		boom := errors.New("db down")
		mockRepo.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, 0, boom)

		_, err := service.Search(ctx, Query{Q: "hobbit"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, 2)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().CountByCreator(gomock.Any(), "u-1").Return(1, nil)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *Book) error {
			assert.Equal(t, "9780547928241", b.ISBN)
			assert.Equal(t, "u-1", b.CreatedBy)
			return nil
		})

		b, err := service.Create(ctx, "u-1", CreateCommand{ISBN: "978-0-547-92824-1", Title: " The Hobbit ", Author: "J.R.R. Tolkien"})
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, "The Hobbit", b.Title)
		assert.False(t, b.CreatedAt.IsZero())
	})

	t.Run("limit reached", func(t *testing.T) {
		mockRepo.EXPECT().CountByCreator(gomock.Any(), "u-1").Return(2, nil)

		_, err := service.Create(ctx, "u-1", CreateCommand{Title: "x", Author: "y"})
		assert.ErrorIs(t, err, ErrLimitReached)
	})

	t.Run("no cap", func(t *testing.T) {
		uncapped := NewService(mockRepo, 0)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		_, err := uncapped.Create(ctx, "u-1", CreateCommand{Title: "x", Author: "y"})
		assert.NoError(t, err)
	})
}

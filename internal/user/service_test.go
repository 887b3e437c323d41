package user

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(User{}, ErrNotFound)
		mockRepo.EXPECT().GetByUsername(gomock.Any(), "test").Return(User{}, ErrNotFound)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		u, err := service.Register(ctx, " Test@Example.com ", "test", "hash")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "test@example.com", u.Email)
		assert.Equal(t, RoleUser, u.Role)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(User{ID: "1"}, nil)

		_, err := service.Register(ctx, "test@example.com", "test", "hash")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("username taken", func(t *testing.T) {
		mockRepo.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(User{}, ErrNotFound)
		mockRepo.EXPECT().GetByUsername(gomock.Any(), "test").Return(User{ID: "1"}, nil)

		_, err := service.Register(ctx, "new@example.com", "test", "hash")
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("lookup failure is not a conflict", func(t *testing.T) {
		boom := errors.New("db down")
		mockRepo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(User{}, boom)

		_, err := service.Register(ctx, "x@example.com", "x_user", "hash")
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_GetByIdentifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(User{ID: "1"}, nil)
	u, err := service.GetByIdentifier(context.Background(), "TEST@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	mockRepo.EXPECT().GetByUsername(gomock.Any(), "test").Return(User{ID: "1"}, nil)
	u, err = service.GetByIdentifier(context.Background(), " test ")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

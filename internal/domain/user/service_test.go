package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookstore/orderflow/internal/domain/user"
	"github.com/bookstore/orderflow/internal/infrastructure/persistence/memory"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(memory.NewStore().Users(), bcrypt.MinCost)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{"邮箱格式错误", "not-an-email", "Passw0rd", "alice", apperrors.ErrInvalidParams},
		{"密码过短", "a@example.com", "Pa1", "alice", apperrors.ErrWeakPassword},
		{"密码无数字", "a@example.com", "Password", "alice", apperrors.ErrWeakPassword},
		{"用户名过短", "a@example.com", "Passw0rd", "a", apperrors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.userName, user.RoleUser)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	t.Run("邮箱统一小写", func(t *testing.T) {
		u, err := svc.Register(ctx, "  Alice@Example.COM ", "Passw0rd", "alice", "")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, user.RoleUser, u.Role)
		assert.NotEqual(t, "Passw0rd", u.Password)

		_, err = svc.Register(ctx, "alice@example.com", "Passw0rd", "alice", user.RoleUser)
		assert.True(t, errors.Is(err, apperrors.ErrEmailDuplicate))

		got, err := svc.Login(ctx, "ALICE@example.com", "Passw0rd")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})
}

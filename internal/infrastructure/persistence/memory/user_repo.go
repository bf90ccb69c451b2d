package memory

import (
	"context"
	"strings"

	"github.com/bookstore/orderflow/internal/domain/user"
	apperrors "github.com/bookstore/orderflow/pkg/errors"
)

type userRepo struct {
	run func(func(*state) error) error
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return r.run(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return apperrors.ErrEmailDuplicate
			}
		}
		cu := *u
		st.users[u.ID] = &cu
		return nil
	})
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	var found *user.User
	err := r.run(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		cu := *u
		found = &cu
		return nil
	})
	return found, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var found *user.User
	err := r.run(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				cu := *u
				found = &cu
				return nil
			}
		}
		return apperrors.ErrUserNotFound
	})
	return found, err
}

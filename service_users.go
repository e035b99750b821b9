package userapi

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UserService enforces existence and merge semantics on top of the store;
// this is the boundary that the API surface calls.
//
// The delete and update primitives of the store cannot distinguish "no such
// row" from "zero rows matched", so every mutation does an explicit lookup
// first and turns absence into a user-facing not-found error instead of a
// silent no-op.
type UserService struct {
	store  Users
	logger Logger
}

// NewUserService creates a UserService around the given store
func NewUserService(store Users) *UserService {
	return &UserService{
		store:  store,
		logger: defLogger{},
	}
}

func (s *UserService) WithLogger(logger Logger) *UserService {
	s.logger = logger
	return s
}

// Create hashes the password and delegates to the store; email uniqueness is
// the store's concern and comes back as ErrEmailTaken.
func (s *UserService) Create(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	created, err := s.store.Create(ctx, user)
	if err != nil {
		s.logger.Error("Create user failed", "email", email, "error", err)
		return nil, err
	}

	return created, nil
}

// FindByEmail returns the user or a not-found error carrying the email
func (s *UserService) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, NewUserNotFoundByEmail(email)
	}

	return user, nil
}

// Update merges the patch onto the stored record and persists the result.
// Fields present in the patch overwrite, absent fields are preserved. A
// password in the patch is re-hashed before storage.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, NewUserNotFoundByID(id.String())
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}

	if patch.Password != nil {
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return nil, richErr
			}
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}
		user.PasswordHash = hash
	}

	updated, err := s.store.Update(ctx, user)
	if err != nil {
		s.logger.Error("Update user failed", "id", id.String(), "error", err)
		return nil, err
	}

	return updated, nil
}

// Remove deletes the user by id and returns a structured acknowledgment
func (s *UserService) Remove(ctx context.Context, id uuid.UUID) (*RemoveAck, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, NewUserNotFoundByID(id.String())
	}

	affected, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		s.logger.Error("Remove user failed", "id", id.String(), "error", err)
		return nil, err
	}

	// the row can vanish between lookup and delete
	if affected == 0 {
		return nil, NewUserNotFoundByID(id.String())
	}

	return &RemoveAck{
		Success: true,
		Message: fmt.Sprintf("User with id %s removed successfully.", id.String()),
	}, nil
}

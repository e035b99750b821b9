package userapi

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserProvider resolves identities for token issuance
type UserProvider struct {
	store  Users
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store Users) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(logger Logger) *UserProvider {
	u.logger = logger
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. Unknown emails and bad passwords are indistinguishable to the
// caller.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, identifier)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		u.logger.Debug("VerifyIdentity password mismatch", "identifier", identifier)
		return nil, ErrMismatchedHashAndPassword
	}

	return NewIdentityFromUser(user), nil
}

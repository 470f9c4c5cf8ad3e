// Package users implements the credential store: persistence of user
// records keyed by a unique email.
package users

import (
	"context"

	"github.com/bpay/bpay/internal/server/models"
)

// Repository is the credential store used by the auth service.
//
// Implementations must enforce email uniqueness themselves: Create reports
// common.ErrorAlreadyExists when the email is taken, even if a concurrent
// caller inserted it after the service's lookup.
type Repository interface {
	// Create stores user and returns it. user.ID must already be set.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByEmail returns the exact-match record or common.ErrorNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns every record in creation order.
	List(ctx context.Context) ([]*models.User, error)
}

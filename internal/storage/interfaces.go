package storage

import (
	"context"
	"errors"

	"github.com/composable-commerce/storefront/pkg/types"
)

// ErrInvalidEmail is returned when a subscriber address fails validation
var ErrInvalidEmail = errors.New("invalid email address")

// SubscriberStore persists newsletter sign-ups from the footer form
type SubscriberStore interface {
	// Add stores a subscriber and reports whether it was new
	Add(ctx context.Context, sub types.Subscriber) (bool, error)
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit int) ([]types.Subscriber, error)
	Ping(ctx context.Context) error
	Close() error
}

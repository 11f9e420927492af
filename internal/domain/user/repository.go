package user

import "context"

// Repository defines the operations for retrieving users and maintaining
// their device-token sets.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// RemoveTokens removes the given tokens from the user's token set as a
	// field-level set-difference, not a whole-record rewrite. Tokens not
	// present are ignored.
	RemoveTokens(ctx context.Context, userID string, tokens []string) error
}

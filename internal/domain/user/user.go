package user

import "time"

// User holds the push-addressable state of an account: its registered device
// tokens. Tokens are added by device registration (external) and removed here
// when the push provider reports them permanently invalid.
type User struct {
	ID           string
	DeviceTokens []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

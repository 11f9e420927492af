package family

import "context"

// Repository defines read access to Family records. Families are created and
// mutated by the account/linking subsystem, which is outside this service.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Family, error)
}

package models

import (
	"context"
	"errors"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
)

// Actor is the authenticated user performing a mutation. It is threaded
// explicitly through every mutating call instead of being looked up from
// ambient request state, so audit rows always name who acted.
type Actor struct {
	ID       int
	Username string
	Role     UserRole
}

func (a Actor) Valid() bool {
	return a.ID > 0 && a.Username != ""
}

// ActorFromContext rebuilds the actor the auth middleware stored on the
// request context. Boundary-only helper; core code receives the Actor value.
func ActorFromContext(ctx context.Context) (Actor, error) {
	id, ok := utils.GetUserIdFromContext(ctx)
	if !ok || id <= 0 {
		return Actor{}, errors.New("not authenticated")
	}
	username, _ := utils.GetUsernameFromContext(ctx)
	role, _ := utils.GetRoleFromContext(ctx)
	return Actor{ID: id, Username: username, Role: UserRole(role)}, nil
}

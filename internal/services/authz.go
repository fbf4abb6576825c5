package services

import "fieldops-backend/internal/auth"

// requireRole gates a service operation behind a minimum role. Services call
// it before touching any repository so a forbidden caller causes no reads or
// writes.
func requireRole(actor auth.Actor, required auth.Role) error {
	if !auth.Authorize(required, actor.Role) {
		return ErrForbidden
	}
	return nil
}

package service

import (
	"tasktracker/internal/apperror"
)

// Authorize allows access only when the principal owns the resource.
func Authorize(principalID, ownerID int64) error {
	if principalID <= 0 || principalID != ownerID {
		return apperror.Forbidden("resource belongs to another user")
	}
	return nil
}

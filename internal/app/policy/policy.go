// Package policy holds the role and ownership rules that gate every mutation.
// The functions do no I/O; callers fetch the resource first so the owner id
// comes from storage, never from the request body.
package policy

import (
	"blog_api/internal/common"
	"blog_api/internal/domain/model"
)

func IsAdmin(identity model.Identity) bool {
	return identity.IsAdmin
}

// IsAdminOrResourceOwner is used for posts and comments, whose owner is the
// authorId of the fetched record.
func IsAdminOrResourceOwner(identity model.Identity, ownerUserID int64) bool {
	return identity.IsAdmin || identity.ID == ownerUserID
}

// IsAdminOrSameUserFromPathID is used on user self-service routes, where the
// resource is the user named by the path.
func IsAdminOrSameUserFromPathID(identity model.Identity, pathUserID int64) bool {
	return identity.IsAdmin || identity.ID == pathUserID
}

// Require turns a decision into an authorization failure.
func Require(allowed bool) error {
	if !allowed {
		return common.Forbidden()
	}
	return nil
}

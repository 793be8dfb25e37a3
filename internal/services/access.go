package services

// Access-control predicates shared by the project, application and review
// services. Pure functions over already-loaded entities and the
// authenticated actor; they never touch the store.

// RoleAllowed reports whether role is in the allowed set.
func RoleAllowed(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// IsOwner reports whether the actor owns the entity identified by ownerID.
func IsOwner(actorID, ownerID uint) bool {
	return actorID != 0 && actorID == ownerID
}

package domain

// Actor is the authenticated caller, resolved upstream of the services.
type Actor struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// ActorFromProfile projects a stored profile into an actor.
func ActorFromProfile(profile *UserProfile) *Actor {
	if profile == nil {
		return nil
	}
	return &Actor{
		ID:       profile.ID,
		Email:    profile.Email,
		Role:     profile.Role,
		IsActive: profile.IsActive,
	}
}

package domain

// User is the account profile returned by the auth endpoints.
type User struct {
	ID                    int     `json:"id"`
	Email                 string  `json:"email"`
	DisplayName           string  `json:"displayName"`
	Language              string  `json:"language,omitempty"`
	PlanID                string  `json:"planId,omitempty"`
	SubscriptionExpiresAt *string `json:"subscriptionExpiresAt,omitempty"`
	HasPaidAccess         bool    `json:"hasPaidAccess,omitempty"`
}

// ProfileUpdate holds the mutable profile fields. Nil fields are left
// untouched by the server.
type ProfileUpdate struct {
	Language              *string `json:"language,omitempty"`
	PlanID                *string `json:"planId,omitempty"`
	SubscriptionExpiresAt *string `json:"subscriptionExpiresAt,omitempty"`
}

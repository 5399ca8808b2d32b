package domain

// Profile is one row of the profiles table, keyed by the auth user id.
// Language is the persisted UI language preference.
type Profile struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Language string `json:"language,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

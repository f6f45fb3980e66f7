// ABOUTME: User and authentication DTOs.
// ABOUTME: LoginResponse carries the token, user data and the user's workouts.
package models

// Membership statuses reported by the backend.
const (
	MembershipFree    = "free"
	MembershipPremium = "premium"
)

// User is the account profile. Password is only sent on register.
type User struct {
	ID               int64  `json:"id,omitempty"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password,omitempty"`
	ProfileImage     string `json:"profileImage,omitempty"`
	MembershipStatus string `json:"membershipStatus,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expiresIn"`
	UserData  User      `json:"userData"`
	Workouts  []Workout `json:"workouts"`
}

// APIMessage is the generic {message,status} body returned by the backend.
type APIMessage struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

package model

// User is the authenticated admin identity as returned by /auth/me.
type User struct {
	Base
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthPayload is the body of a successful login or register call: the
// user record with the bearer token alongside it.
type AuthPayload struct {
	User
	Token string `json:"token"`
}

type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ProfileUpdate struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// PasswordChange is what the settings form collects. ConfirmPassword is
// checked locally and never sent.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
}

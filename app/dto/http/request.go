package http

type SignUpRequest struct {
	User SignUpUser `json:"user" validate:"required"`
}

type SignUpUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"required"`
}

type SignInRequest struct {
	User SignInUser `json:"user" validate:"required"`
}

type SignInUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	User UpdateUserPayload `json:"user" validate:"required"`
}

type UpdateUserPayload struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,min=1"`
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

package http

import "github.com/vibast-solutions/ms-go-blog/app/entity"

// UserResponse is the client-facing view of a user. It has no password field
// at all, so the hash cannot leak through serialization.
type UserResponse struct {
	ID       uint64        `json:"id"`
	Email    string        `json:"email"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Bio      string        `json:"bio"`
	Image    *FileResponse `json:"image,omitempty"`
}

type FileResponse struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
}

// TokenizedUserResponse carries a freshly issued access token alongside the
// user view, for the registration and profile endpoints.
type TokenizedUserResponse struct {
	UserResponse
	Token string `json:"token"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type TokenizedUserEnvelope struct {
	User TokenizedUserResponse `json:"user"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewUserResponse(user *entity.User) UserResponse {
	resp := UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
		Bio:      user.Bio,
	}
	if user.Image != nil {
		resp.Image = &FileResponse{
			ID:  user.Image.ID,
			URL: user.Image.URL,
		}
	}
	return resp
}

func NewUserEnvelope(user *entity.User) UserEnvelope {
	return UserEnvelope{User: NewUserResponse(user)}
}

func NewTokenizedUserEnvelope(user *entity.User, token string) TokenizedUserEnvelope {
	return TokenizedUserEnvelope{
		User: TokenizedUserResponse{
			UserResponse: NewUserResponse(user),
			Token:        token,
		},
	}
}

func NewUsersResponse(users []*entity.User) UsersResponse {
	resp := UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, user := range users {
		resp.Users = append(resp.Users, NewUserResponse(user))
	}
	return resp
}

func NewFileResponse(file *entity.PublicFile) FileResponse {
	return FileResponse{ID: file.ID, URL: file.URL}
}

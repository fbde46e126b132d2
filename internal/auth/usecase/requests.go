package usecase

import (
	"strings"
)

// RequestMeta describes the client that issued a request
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// SignUpRequest is the body of POST /api/auth/sign-up/email
type SignUpRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=100,password"`
	Image       *string `json:"image" validate:"omitnil,url"`
	CallbackURL string  `json:"callbackURL"`
}

func (r *SignUpRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	if r.Image != nil {
		image := strings.TrimSpace(*r.Image)
		r.Image = &image
	}
}

// SignInRequest is the body of POST /api/auth/sign-in/email
type SignInRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	RememberMe  *bool  `json:"rememberMe"`
	CallbackURL string `json:"callbackURL"`
}

func (r *SignInRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

// remember reports whether the session cookie should persist across browser restarts
func (r *SignInRequest) remember() bool {
	return r.RememberMe == nil || *r.RememberMe
}

// ChangePasswordRequest is the body of POST /api/auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword     string `json:"currentPassword" validate:"required"`
	NewPassword         string `json:"newPassword" validate:"required,min=8,max=100,password,nefield=CurrentPassword"`
	RevokeOtherSessions bool   `json:"revokeOtherSessions"`
}

// SocialSignInRequest is the body of POST /api/auth/sign-in/social
type SocialSignInRequest struct {
	Provider    string `json:"provider" validate:"required,max=32"`
	CallbackURL string `json:"callbackURL" validate:"max=2048"`
}

func (r *SocialSignInRequest) Normalize() {
	r.Provider = strings.ToLower(strings.TrimSpace(r.Provider))
	r.CallbackURL = strings.TrimSpace(r.CallbackURL)
}

// SocialCallbackRequest carries the provider redirect back to us
type SocialCallbackRequest struct {
	Provider string
	Code     string
	State    string
	Error    string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

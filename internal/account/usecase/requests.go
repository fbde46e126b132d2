package usecase

import "strings"

// UpdateProfileRequest is the body of PATCH /users/me; absent fields stay unchanged
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=2,max=100"`
	Image *string `json:"image" validate:"omitnil,url"`
}

// Normalize trims the provided fields
func (r *UpdateProfileRequest) Normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Image != nil {
		image := strings.TrimSpace(*r.Image)
		r.Image = &image
	}
}

// SessionParams identifies one session in the URL
type SessionParams struct {
	SessionID string `params:"sessionId" json:"sessionId" validate:"required,max=128"`
}

// Normalize trims the id
func (p *SessionParams) Normalize() {
	p.SessionID = strings.TrimSpace(p.SessionID)
}

package dto

type FeedbackRequest struct {
	Type        string `json:"type" validate:"required,oneof=bug feature analytics question other"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type FeedbackResponse struct {
	Id string `json:"id"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company"`
	Message string `json:"message" validate:"required"`
}

type WaitlistRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source"`
}

type WaitlistResponse struct {
	AlreadyListed bool `json:"already_listed"`
}

type SiteStatusResponse struct {
	Maintenance      bool   `json:"maintenance"`
	PreviewProtected bool   `json:"preview_protected"`
	Message          string `json:"message,omitempty"`
}

type UnlockRequest struct {
	Password string `json:"password"`
}

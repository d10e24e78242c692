package dto

type CreateAppSessionRequest struct {
	InitialView string `json:"initial_view"`
}

type AppSessionResponse struct {
	Id             string            `json:"id"`
	View           string            `json:"view"`
	HasSession     bool              `json:"has_session"`
	Shop           *ShopInfoResponse `json:"shop"`
	MobileMenuOpen bool              `json:"mobile_menu_open"`
}

type NavigateRequest struct {
	View string `json:"view" validate:"required"`
}

type MobileMenuRequest struct {
	Open bool `json:"open"`
}

type UsageDecisionResponse struct {
	Allowed          bool   `json:"allowed"`
	Unlimited        bool   `json:"unlimited"`
	RemainingCredits *int   `json:"remaining_credits,omitempty"`
	ShowUpgrade      bool   `json:"show_upgrade"`
	Retryable        bool   `json:"retryable"`
	Message          string `json:"message"`
}

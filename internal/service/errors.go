package service

import "errors"

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOAuthOnlyAccount    = errors.New("this account signs in with Google")
	ErrUserBlocked         = errors.New("user account is blocked")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidResetCode    = errors.New("invalid or expired reset code")
	ErrUnsupportedProvider = errors.New("unsupported provider")

	ErrShopNotFound        = errors.New("shop not found")
	ErrInvalidShopName     = errors.New("shop name is required")
	ErrTooManyEmails       = errors.New("at most 5 notification emails are allowed")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidIntegration  = errors.New("unsupported integration provider")
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrApiKeyRequired      = errors.New("api key is required")

	ErrNoBillingCustomer = errors.New("no billing account yet, upgrade first")
	ErrPaymentProvider   = errors.New("payment provider error")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUsageDenied       = errors.New("no free audits remaining")

	ErrEmptyFeedback = errors.New("title and description are required")

	ErrInvalidPreviewPassword = errors.New("incorrect password")

	ErrAppSessionNotFound = errors.New("app session not found")
	ErrInvalidView        = errors.New("unknown view")
)

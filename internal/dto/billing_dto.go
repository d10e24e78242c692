package dto

type URLResponse struct {
	URL string `json:"url"`
}

// UsageGuardResponse is returned both with 200 and with 402.
type UsageGuardResponse struct {
	Allowed          bool   `json:"allowed"`
	Reason           string `json:"reason,omitempty"`
	RemainingCredits *int   `json:"remaining_credits,omitempty"`
	Status           string `json:"status,omitempty"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
}

package dto

import (
	"github.com/google/uuid"
)

type CheckoutRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
}

type CheckoutResponse struct {
	PaymentId       uuid.UUID `json:"payment_id"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	// Signature validation fields
	SignatureKey string `json:"signature_key"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}

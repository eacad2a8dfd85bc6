package models

import "time"

// User is a marketplace account. Identity management lives in a separate
// service; this service only reads users to resolve roles and names.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentConfirmedWebhook is the wallet service callback payload sent when a
// participant's payment for a session settles.
type PaymentConfirmedWebhook struct {
	SessionID     string `json:"sessionId" binding:"required"`
	ParticipantID string `json:"participantId" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
}

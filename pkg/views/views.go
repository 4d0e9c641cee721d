package views

import (
	"time"

	"github.com/novabank/payportal/pkg"
)

// UserProfile is the public projection of a user record.
type UserProfile struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Role          string `json:"role"`
}

// PaymentView is the wire representation of a payment record. Verified is
// derived from the review status for clients that only filter on the flag.
type PaymentView struct {
	ID            string            `json:"id"`
	Username      string            `json:"username,omitempty"`
	AccountNumber string            `json:"accountNumber,omitempty"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency"`
	Provider      string            `json:"provider"`
	AccountInfo   string            `json:"accountInfo"`
	SwiftCode     string            `json:"swiftCode"`
	SenderEmail   string            `json:"senderEmail"`
	ReceiverEmail string            `json:"receiverEmail"`
	Status        pkg.PaymentStatus `json:"status"`
	Verified      bool              `json:"verified"`
	Reason        string            `json:"reason"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// NotificationJob is the payload published to the notification topic after a
// payment write commits. The worker owns delivery and retry; the API never
// blocks on it.
type NotificationJob struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"` // pkg.NotificationPaymentCreated | pkg.NotificationOperatorAlert
	TraceID       string    `json:"traceId"`
	SenderEmail   string    `json:"senderEmail,omitempty"`
	ReceiverEmail string    `json:"receiverEmail,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Subject       string    `json:"subject,omitempty"` // operator alerts only
	Detail        string    `json:"detail,omitempty"`
	RetryCount    int       `json:"retryCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

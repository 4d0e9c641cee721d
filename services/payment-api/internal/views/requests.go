package views

import "github.com/novabank/payportal/pkg/views"

// RegisterRequest is the JSON body of POST /api/v1/auth/register.
type RegisterRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	IDNumber      string `json:"idNumber"`
	AccountNumber string `json:"accountNumber"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	PhoneNumber   string `json:"phoneNumber"`
	Country       string `json:"country"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

// LoginRequest is the JSON body of POST /api/v1/auth/login. Customers log in
// with the (accountNumber, username) pair, not the email.
type LoginRequest struct {
	AccountNumber string `json:"accountNumber"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

type LoginResponse struct {
	Token   string            `json:"token"`
	Profile views.UserProfile `json:"profile"`
}

// PaymentRequest is the JSON body of POST /api/v1/payments.
type PaymentRequest struct {
	Username      string `json:"username"`
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Provider      string `json:"provider"`
	AccountInfo   string `json:"accountInfo"`
	SwiftCode     string `json:"swiftCode"`
	SenderEmail   string `json:"senderEmail"`
	ReceiverEmail string `json:"receiverEmail"`
}

// PaymentCreatedResponse carries the stored record plus the signed gateway
// redirect when the gateway is enabled.
type PaymentCreatedResponse struct {
	Payment     views.PaymentView `json:"payment"`
	RedirectURL string            `json:"redirectUrl,omitempty"`
}

// VerifyAccountRequest is the JSON body of POST /api/v1/payments/verify-account.
type VerifyAccountRequest struct {
	AccountNumber string `json:"accountNumber"`
	SenderEmail   string `json:"senderEmail"`
	AccountInfo   string `json:"accountInfo"`
	ReceiverEmail string `json:"receiverEmail"`
}

// VerifyAccountResult reports the identity check outcome. Message names the
// first failing branch in check order; empty on success. NotFound
// distinguishes an unregistered email from an account mismatch so the
// endpoint can answer 404 vs 400.
type VerifyAccountResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
	NotFound bool   `json:"-"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/views"
)

// Payment maps to table `payments`. Amount is kept as the formatted decimal
// string the gateway signature was (or will be) computed over.
type Payment struct {
	ID            uuid.UUID
	Username      string
	AccountNumber string
	Amount        string
	Currency      string
	Provider      string
	AccountInfo   string
	SwiftCode     string
	SenderEmail   string
	ReceiverEmail string
	Status        pkg.PaymentStatus
	Reason        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Payment) ToView() views.PaymentView {
	return views.PaymentView{
		ID:            p.ID.String(),
		Username:      p.Username,
		AccountNumber: p.AccountNumber,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Provider:      p.Provider,
		AccountInfo:   p.AccountInfo,
		SwiftCode:     p.SwiftCode,
		SenderEmail:   p.SenderEmail,
		ReceiverEmail: p.ReceiverEmail,
		Status:        p.Status,
		Verified:      p.Status.Verified(),
		Reason:        p.Reason,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

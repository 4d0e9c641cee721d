package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/novabank/payportal/pkg"
)

// Every inbound string field is trimmed and HTML-escaped before any further
// processing so a stored payload can never carry script content into a
// rendering client. Validation then runs whitelist patterns per field and
// rejects on the first mismatch, naming the offending field.

var whitelistPatterns = map[string]*regexp.Regexp{
	"username":      regexp.MustCompile(`^[a-zA-Z0-9_ ]{3,30}$`),
	"accountNumber": regexp.MustCompile(`^[0-9]{6,20}$`),
	"amount":        regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`),
	"currency":      regexp.MustCompile(`^[A-Z]{3}$`),
	"provider":      regexp.MustCompile(`^[a-zA-Z0-9\s\-]{2,50}$`),
	"accountInfo":   regexp.MustCompile(`^[a-zA-Z0-9\s,.'\-]{3,100}$`),
	"swiftCode":     regexp.MustCompile(`^[A-Z0-9]{8,11}$`),
	"email":         regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`),
	"name":          regexp.MustCompile(`^[a-zA-Z\s'\-]{1,50}$`),
	"idNumber":      regexp.MustCompile(`^[a-zA-Z0-9]{6,20}$`),
}

// Apostrophes are deliberately not escaped: they are legal in accountInfo
// values ("O'Neil") and carry no markup meaning in the entity-escaped output.
var (
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;")
	htmlUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&quot;", `"`)
)

// Sanitize trims surrounding whitespace and entity-escapes HTML
// metacharacters. Idempotent: already-escaped text is unescaped first so a
// second pass yields the identical string.
func Sanitize(s string) string {
	return htmlEscaper.Replace(htmlUnescaper.Replace(strings.TrimSpace(s)))
}

func matches(pattern, value string) bool {
	re, ok := whitelistPatterns[pattern]
	if !ok {
		return true
	}
	return re.MatchString(value)
}

func missingFieldErr(fields ...string) error {
	return pkg.NewAppError(pkg.ErrMissingFieldCode, "missing required fields", fmt.Errorf("empty: %s", strings.Join(fields, ", ")))
}

func invalidFormatErr(field string) error {
	return pkg.NewAppError(pkg.ErrInvalidFormatCode, fmt.Sprintf("invalid %s format", field), nil)
}

// PaymentInput is the sanitized field set of a payment submission.
type PaymentInput struct {
	Username      string
	AccountNumber string
	Amount        string
	Currency      string
	Provider      string
	AccountInfo   string
	SwiftCode     string
	SenderEmail   string
	ReceiverEmail string
}

// SanitizePayment returns a copy with every field sanitized.
func SanitizePayment(in PaymentInput) PaymentInput {
	return PaymentInput{
		Username:      Sanitize(in.Username),
		AccountNumber: Sanitize(in.AccountNumber),
		Amount:        Sanitize(in.Amount),
		Currency:      Sanitize(in.Currency),
		Provider:      Sanitize(in.Provider),
		AccountInfo:   Sanitize(in.AccountInfo),
		SwiftCode:     Sanitize(in.SwiftCode),
		SenderEmail:   Sanitize(in.SenderEmail),
		ReceiverEmail: Sanitize(in.ReceiverEmail),
	}
}

// Validate checks required fields, then whitelist patterns in a fixed order.
// Pure: no side effects, first pattern mismatch wins.
func (in PaymentInput) Validate() error {
	var empty []string
	for _, f := range []struct{ name, value string }{
		{"amount", in.Amount},
		{"currency", in.Currency},
		{"provider", in.Provider},
		{"accountInfo", in.AccountInfo},
		{"swiftCode", in.SwiftCode},
		{"senderEmail", in.SenderEmail},
		{"receiverEmail", in.ReceiverEmail},
	} {
		if f.value == "" {
			empty = append(empty, f.name)
		}
	}
	if len(empty) > 0 {
		return missingFieldErr(empty...)
	}

	checks := []struct{ field, pattern, value string }{
		{"username", "username", in.Username},
		{"accountNumber", "accountNumber", in.AccountNumber},
		{"amount", "amount", in.Amount},
		{"currency", "currency", in.Currency},
		{"provider", "provider", in.Provider},
		{"accountInfo", "accountInfo", in.AccountInfo},
		{"swiftCode", "swiftCode", in.SwiftCode},
		{"senderEmail", "email", in.SenderEmail},
		{"receiverEmail", "email", in.ReceiverEmail},
	}
	for _, c := range checks {
		if c.value == "" {
			continue // optional fields (username, accountNumber) may stay empty
		}
		if !matches(c.pattern, c.value) {
			return invalidFormatErr(c.field)
		}
	}
	return nil
}

// RegisterInput is the sanitized field set of a registration request.
// Password is deliberately not sanitized: it is hashed, never rendered.
type RegisterInput struct {
	FirstName     string
	LastName      string
	IDNumber      string
	AccountNumber string
	Username      string
	Email         string
	Password      string
	PhoneNumber   string
	Country       string
	Address       string
	City          string
	PostalCode    string
}

func SanitizeRegister(in RegisterInput) RegisterInput {
	out := in
	out.FirstName = Sanitize(in.FirstName)
	out.LastName = Sanitize(in.LastName)
	out.IDNumber = Sanitize(in.IDNumber)
	out.AccountNumber = Sanitize(in.AccountNumber)
	out.Username = Sanitize(in.Username)
	out.Email = Sanitize(in.Email)
	out.PhoneNumber = Sanitize(in.PhoneNumber)
	out.Country = Sanitize(in.Country)
	out.Address = Sanitize(in.Address)
	out.City = Sanitize(in.City)
	out.PostalCode = Sanitize(in.PostalCode)
	return out
}

func (in RegisterInput) Validate() error {
	var empty []string
	for _, f := range []struct{ name, value string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"idNumber", in.IDNumber},
		{"accountNumber", in.AccountNumber},
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
	} {
		if f.value == "" {
			empty = append(empty, f.name)
		}
	}
	if len(empty) > 0 {
		return missingFieldErr(empty...)
	}

	checks := []struct{ field, pattern, value string }{
		{"firstName", "name", in.FirstName},
		{"lastName", "name", in.LastName},
		{"idNumber", "idNumber", in.IDNumber},
		{"accountNumber", "accountNumber", in.AccountNumber},
		{"username", "username", in.Username},
		{"email", "email", in.Email},
	}
	for _, c := range checks {
		if !matches(c.pattern, c.value) {
			return invalidFormatErr(c.field)
		}
	}
	if len(in.Password) < 8 {
		return invalidFormatErr("password")
	}
	return nil
}

// VerifyAccountInput is the field set of an identity verification request.
type VerifyAccountInput struct {
	AccountNumber string
	SenderEmail   string
	AccountInfo   string
	ReceiverEmail string
}

func SanitizeVerifyAccount(in VerifyAccountInput) VerifyAccountInput {
	return VerifyAccountInput{
		AccountNumber: Sanitize(in.AccountNumber),
		SenderEmail:   Sanitize(in.SenderEmail),
		AccountInfo:   Sanitize(in.AccountInfo),
		ReceiverEmail: Sanitize(in.ReceiverEmail),
	}
}

func (in VerifyAccountInput) Validate() error {
	var empty []string
	for _, f := range []struct{ name, value string }{
		{"accountNumber", in.AccountNumber},
		{"senderEmail", in.SenderEmail},
		{"accountInfo", in.AccountInfo},
		{"receiverEmail", in.ReceiverEmail},
	} {
		if f.value == "" {
			empty = append(empty, f.name)
		}
	}
	if len(empty) > 0 {
		return missingFieldErr(empty...)
	}
	return nil
}

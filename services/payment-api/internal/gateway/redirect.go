package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config carries the merchant credentials and endpoint URLs for the external
// payment gateway. It is loaded once at process start and passed in
// explicitly; nothing here reads the environment.
type Config struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string // redirect target, e.g. the sandbox process endpoint
	ValidateURL string // optional server-to-server callback validation endpoint
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// Builder assembles signed redirect URLs for the gateway and verifies inbound
// callback payloads.
type Builder struct {
	cfg    Config
	signer *Signer
	client *http.Client
	now    func() time.Time
}

func NewBuilder(cfg Config, client *http.Client) *Builder {
	return &Builder{
		cfg:    cfg,
		signer: NewSigner(cfg.Passphrase),
		client: client,
		now:    time.Now,
	}
}

// FormatAmount normalizes a validated amount string to exactly two fraction
// digits. The signature must be computed over this final form, never the raw
// input, or gateway-side verification fails.
func FormatAmount(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("amount %q is negative", raw)
	}
	return d.StringFixed(2), nil
}

// BuildRedirect returns the full gateway redirect URL for one payment. A fresh
// m_payment_id is minted per call so retried submissions stay distinguishable
// on the gateway side.
func (b *Builder) BuildRedirect(amount, itemName, buyerEmail string) (string, error) {
	formatted, err := FormatAmount(amount)
	if err != nil {
		return "", err
	}

	fields := map[string]string{
		"merchant_id":   b.cfg.MerchantID,
		"merchant_key":  b.cfg.MerchantKey,
		"return_url":    b.cfg.ReturnURL,
		"cancel_url":    b.cfg.CancelURL,
		"notify_url":    b.cfg.NotifyURL,
		"amount":        formatted,
		"item_name":     itemName,
		"email_address": buyerEmail,
		"m_payment_id":  fmt.Sprintf("PAY-%d", b.now().UnixMilli()),
	}

	signature, err := b.signer.Sign(fields)
	if err != nil {
		return "", err
	}
	fields["signature"] = signature

	return b.cfg.ProcessURL + "?" + encodeQuery(fields), nil
}

// VerifyCallback checks an inbound gateway notification: the signature must
// match and, when a validate endpoint is configured, the gateway must confirm
// the payload server-to-server.
func (b *Builder) VerifyCallback(ctx context.Context, params map[string]string) (bool, error) {
	if !b.signer.Verify(params, params["signature"]) {
		return false, nil
	}
	if b.cfg.ValidateURL == "" {
		return true, nil
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.ValidateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.TrimSpace(string(body)), "VALID"), nil
}

// encodeQuery renders the fields sorted with signature last, using the same
// component encoding the signature was computed over.
func encodeQuery(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if sig, ok := fields["signature"]; ok && sig != "" {
		keys = append(keys, "signature")
	}

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(EncodeComponent(fields[k]))
	}
	return b.String()
}

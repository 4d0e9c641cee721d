package gateway

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// The gateway's signing scheme is fixed by its API contract: field names are
// sorted lexicographically, each value percent-encoded with the JS
// encodeURIComponent character set and spaces as '+', joined as
// key=value&key=value, the shared passphrase appended, and the whole string
// hashed with MD5. MD5 here is a compatibility requirement of the external
// processor, not a security choice.

var errNoFields = errors.New("no fields to sign")

// Signer produces and verifies gateway request signatures.
type Signer struct {
	passphrase string
}

func NewSigner(passphrase string) *Signer {
	return &Signer{passphrase: passphrase}
}

// Sign returns the lowercase hex MD5 digest over the canonical form of
// fields. A "signature" key in the input is ignored so callers can re-verify
// inbound payloads without stripping it first.
func (s *Signer) Sign(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", errNoFields
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", errNoFields
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(EncodeComponent(fields[k]))
	}
	if s.passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(EncodeComponent(s.passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the signature over params (minus any "signature" entry)
// and compares it against the supplied digest in constant time.
func (s *Signer) Verify(params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	expected, err := s.Sign(params)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) == 1
}

// encodeComponent replacer: url.QueryEscape already uses '+' for spaces but
// escapes !'()* which encodeURIComponent leaves bare; the gateway verifies
// against the JS convention, so restore them.
var componentReplacer = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes a value the way the gateway expects:
// encodeURIComponent semantics with the space-as-'+' convention.
func EncodeComponent(v string) string {
	return componentReplacer.Replace(url.QueryEscape(v))
}

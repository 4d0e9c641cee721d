package workflow

import (
	"fmt"

	"github.com/novabank/payportal/pkg"
)

// The employee review flow is a small state machine over the persisted
// payment status:
//
//	unchecked -> checked_ok | checked_mismatch  (identity check, repeatable)
//	checked_ok -> verified
//	verified -> submitted                       (idempotent, terminal)
//
// checked_mismatch never reaches verified; a new check run is the only way
// out. Transition functions return the next state or a typed
// PreconditionFailed rejection; callers persist the result.

func precondition(from pkg.PaymentStatus, action string) error {
	return pkg.NewAppError(pkg.ErrPreconditionFailedCode,
		fmt.Sprintf("cannot %s a payment in state %q", action, from), nil)
}

// Check records an identity verification outcome. Allowed from any
// pre-verification state so an employee can re-run checks; forbidden once the
// record is verified or submitted.
func Check(current pkg.PaymentStatus, ok bool) (pkg.PaymentStatus, error) {
	switch current {
	case pkg.PaymentStatusUnchecked, pkg.PaymentStatusCheckedOk, pkg.PaymentStatusCheckedMismatch:
		if ok {
			return pkg.PaymentStatusCheckedOk, nil
		}
		return pkg.PaymentStatusCheckedMismatch, nil
	default:
		return current, precondition(current, "check")
	}
}

// Verify promotes a payment whose checks passed. Only checked_ok qualifies.
func Verify(current pkg.PaymentStatus) (pkg.PaymentStatus, error) {
	if current != pkg.PaymentStatusCheckedOk {
		return current, precondition(current, "verify")
	}
	return pkg.PaymentStatusVerified, nil
}

// Submit hands a verified payment to the settlement network. Submitting an
// already-submitted record is a no-op reported as success.
func Submit(current pkg.PaymentStatus) (next pkg.PaymentStatus, alreadySubmitted bool, err error) {
	switch current {
	case pkg.PaymentStatusVerified:
		return pkg.PaymentStatusSubmitted, false, nil
	case pkg.PaymentStatusSubmitted:
		return pkg.PaymentStatusSubmitted, true, nil
	default:
		return current, false, precondition(current, "submit")
	}
}

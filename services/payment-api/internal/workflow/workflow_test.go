package workflow

import (
	"errors"
	"testing"

	"github.com/novabank/payportal/pkg"
	"github.com/stretchr/testify/assert"
)

func assertPrecondition(t *testing.T, err error) {
	t.Helper()
	var appErr pkg.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkg.ErrPreconditionFailedCode, appErr.Code)
}

func TestCheck(t *testing.T) {
	next, err := Check(pkg.PaymentStatusUnchecked, true)
	assert.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusCheckedOk, next)

	next, err = Check(pkg.PaymentStatusUnchecked, false)
	assert.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusCheckedMismatch, next)

	// re-running a check is allowed in either direction
	next, err = Check(pkg.PaymentStatusCheckedMismatch, true)
	assert.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusCheckedOk, next)

	_, err = Check(pkg.PaymentStatusVerified, true)
	assertPrecondition(t, err)
	_, err = Check(pkg.PaymentStatusSubmitted, true)
	assertPrecondition(t, err)
}

func TestVerify_OnlyFromCheckedOk(t *testing.T) {
	next, err := Verify(pkg.PaymentStatusCheckedOk)
	assert.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusVerified, next)

	for _, from := range []pkg.PaymentStatus{
		pkg.PaymentStatusUnchecked,
		pkg.PaymentStatusCheckedMismatch,
		pkg.PaymentStatusVerified,
		pkg.PaymentStatusSubmitted,
	} {
		got, err := Verify(from)
		assertPrecondition(t, err)
		assert.Equal(t, from, got, "state must not change on rejection")
	}
}

func TestSubmit(t *testing.T) {
	next, already, err := Submit(pkg.PaymentStatusVerified)
	assert.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, pkg.PaymentStatusSubmitted, next)

	// idempotent re-submit
	next, already, err = Submit(pkg.PaymentStatusSubmitted)
	assert.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, pkg.PaymentStatusSubmitted, next)

	for _, from := range []pkg.PaymentStatus{
		pkg.PaymentStatusUnchecked,
		pkg.PaymentStatusCheckedOk,
		pkg.PaymentStatusCheckedMismatch,
	} {
		_, _, err := Submit(from)
		assertPrecondition(t, err)
	}
}

func TestVerifiedFlag(t *testing.T) {
	assert.False(t, pkg.PaymentStatusUnchecked.Verified())
	assert.False(t, pkg.PaymentStatusCheckedOk.Verified())
	assert.False(t, pkg.PaymentStatusCheckedMismatch.Verified())
	assert.True(t, pkg.PaymentStatusVerified.Verified())
	assert.True(t, pkg.PaymentStatusSubmitted.Verified())
}

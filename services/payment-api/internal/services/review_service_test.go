package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reviewFixture(t *testing.T, status pkg.PaymentStatus) (*ReviewServiceImpl, *fakePaymentRepo, uuid.UUID) {
	t.Helper()
	repo := newFakePaymentRepo()
	id := uuid.New()
	repo.payments[id] = models.Payment{
		ID:            id,
		AccountNumber: "11111111",
		Amount:        "100.00",
		Currency:      "USD",
		AccountInfo:   "22222222",
		SenderEmail:   "sender@bank.test",
		ReceiverEmail: "receiver@bank.test",
		Status:        status,
	}
	identity := NewIdentityService(zap.NewNop(), registeredUsers())
	svc := NewReviewService(zap.NewNop(), repo, identity).(*ReviewServiceImpl)
	return svc, repo, id
}

func reviewErrCode(t *testing.T, err error) pkg.ErrorCode {
	t.Helper()
	var appErr pkg.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestCheckPayment_MatchingIdentities(t *testing.T) {
	svc, repo, id := reviewFixture(t, pkg.PaymentStatusUnchecked)

	view, err := svc.CheckPayment(context.Background(), "trace", id)
	require.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusCheckedOk, view.Status)
	assert.Empty(t, view.Reason)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, pkg.PaymentStatusCheckedOk, repo.updates[0].status)
}

func TestCheckPayment_MismatchRecordsReason(t *testing.T) {
	svc, repo, id := reviewFixture(t, pkg.PaymentStatusUnchecked)
	payment := repo.payments[id]
	payment.SenderEmail = "ghost@bank.test"
	repo.payments[id] = payment

	view, err := svc.CheckPayment(context.Background(), "trace", id)
	require.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusCheckedMismatch, view.Status)
	assert.Equal(t, "sender email not found", view.Reason)
	assert.Equal(t, "sender email not found", repo.payments[id].Reason)
}

func TestCheckPayment_RepeatableUntilVerified(t *testing.T) {
	svc, repo, id := reviewFixture(t, pkg.PaymentStatusCheckedMismatch)

	view, err := svc.CheckPayment(context.Background(), "trace", id)
	require.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusCheckedOk, view.Status)

	require.NoError(t, repo.UpdateStatus(context.Background(), id, pkg.PaymentStatusVerified, ""))
	_, err = svc.CheckPayment(context.Background(), "trace", id)
	assert.Equal(t, pkg.ErrPreconditionFailedCode, reviewErrCode(t, err))
}

func TestCheckPayment_UnknownID(t *testing.T) {
	svc, _, _ := reviewFixture(t, pkg.PaymentStatusUnchecked)

	_, err := svc.CheckPayment(context.Background(), "trace", uuid.New())
	assert.Equal(t, pkg.ErrRecordNotFoundCode, reviewErrCode(t, err))
}

func TestVerifyPayment(t *testing.T) {
	svc, repo, id := reviewFixture(t, pkg.PaymentStatusCheckedOk)

	view, err := svc.VerifyPayment(context.Background(), "trace", id)
	require.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusVerified, view.Status)
	assert.True(t, view.Verified)
	assert.Equal(t, pkg.PaymentStatusVerified, repo.payments[id].Status)
}

func TestVerifyPayment_RejectsWrongState(t *testing.T) {
	for _, status := range []pkg.PaymentStatus{
		pkg.PaymentStatusUnchecked,
		pkg.PaymentStatusCheckedMismatch,
		pkg.PaymentStatusSubmitted,
	} {
		svc, repo, id := reviewFixture(t, status)
		_, err := svc.VerifyPayment(context.Background(), "trace", id)
		assert.Equal(t, pkg.ErrPreconditionFailedCode, reviewErrCode(t, err), string(status))
		assert.Empty(t, repo.updates, "rejected transition must not write")
	}
}

func TestSubmitPayment(t *testing.T) {
	svc, repo, id := reviewFixture(t, pkg.PaymentStatusVerified)

	view, err := svc.SubmitPayment(context.Background(), "trace", id)
	require.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusSubmitted, view.Status)
	assert.True(t, view.Verified, "submitted records stay verified")
	require.Len(t, repo.updates, 1)
}

func TestSubmitPayment_Idempotent(t *testing.T) {
	svc, repo, id := reviewFixture(t, pkg.PaymentStatusSubmitted)

	view, err := svc.SubmitPayment(context.Background(), "trace", id)
	require.NoError(t, err)
	assert.Equal(t, pkg.PaymentStatusSubmitted, view.Status)
	assert.Empty(t, repo.updates, "re-submit must not write")
}

func TestSubmitPayment_RequiresVerified(t *testing.T) {
	svc, _, id := reviewFixture(t, pkg.PaymentStatusCheckedOk)

	_, err := svc.SubmitPayment(context.Background(), "trace", id)
	assert.Equal(t, pkg.ErrPreconditionFailedCode, reviewErrCode(t, err))
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/models"
	"github.com/novabank/payportal/pkg/views"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx, nil)
}

type fakeUserRepo struct {
	users     []models.User
	createErr error
}

func (f *fakeUserRepo) Create(_ context.Context, _ pgx.Tx, user models.User) (pgconn.CommandTag, error) {
	if f.createErr != nil {
		return pgconn.CommandTag{}, f.createErr
	}
	f.users = append(f.users, user)
	return pgconn.CommandTag{}, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, errNotFound
}

func (f *fakeUserRepo) FindByAccountAndUsername(_ context.Context, accountNumber, username string) (models.User, error) {
	for _, u := range f.users {
		if u.AccountNumber == accountNumber && u.Username == username {
			return u, nil
		}
	}
	return models.User{}, errNotFound
}

type statusUpdate struct {
	id     uuid.UUID
	status pkg.PaymentStatus
	reason string
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]models.Payment
	updates  []statusUpdate
	listErr  error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uuid.UUID]models.Payment{}}
}

func (f *fakePaymentRepo) Create(_ context.Context, _ pgx.Tx, payment models.Payment) (pgconn.CommandTag, error) {
	payment.Status = pkg.PaymentStatusUnchecked
	f.payments[payment.ID] = payment
	return pgconn.CommandTag{}, nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (models.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return models.Payment{}, pgx.ErrNoRows
	}
	return payment, nil
}

func (f *fakePaymentRepo) ListAll(_ context.Context, verified *bool) ([]models.Payment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Payment
	for _, p := range f.payments {
		if verified == nil || p.Status.Verified() == *verified {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status pkg.PaymentStatus, reason string) error {
	payment, ok := f.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	payment.Status = status
	payment.Reason = reason
	f.payments[id] = payment
	f.updates = append(f.updates, statusUpdate{id: id, status: status, reason: reason})
	return nil
}

type fakePublisher struct {
	jobs []views.NotificationJob
	err  error
}

func (f *fakePublisher) Publish(job views.NotificationJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakePublisher) Close() {}

package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderRequestId string = "X-Request-Id"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
	PaymentId string = "payment_id"
)

// PaymentStatus is the review state of a payment request. A record enters
// `unchecked` on creation and only the employee review endpoints move it
// forward; `submitted` is terminal.
type PaymentStatus string

const (
	PaymentStatusUnchecked       PaymentStatus = "unchecked"
	PaymentStatusCheckedOk       PaymentStatus = "checked_ok"
	PaymentStatusCheckedMismatch PaymentStatus = "checked_mismatch"
	PaymentStatusVerified        PaymentStatus = "verified"
	PaymentStatusSubmitted       PaymentStatus = "submitted"
)

// Verified reports whether the status counts as verified for the public
// `?verified=` listing filter. Submitted records stay verified.
func (s PaymentStatus) Verified() bool {
	return s == PaymentStatusVerified || s == PaymentStatusSubmitted
}

// Role values stored on users.
const (
	RoleUser     string = "user"
	RoleEmployee string = "employee"
)

// Notification job types consumed by the notification worker.
const (
	NotificationPaymentCreated string = "payment_created"
	NotificationOperatorAlert  string = "operator_alert"
)

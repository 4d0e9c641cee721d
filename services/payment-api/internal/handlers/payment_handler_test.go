package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg"
	middleware "github.com/novabank/payportal/pkg/middlewares"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/payment-api/internal/gateway"
	"github.com/novabank/payportal/services/payment-api/internal/validation"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPaymentService struct {
	created  *svcviews.PaymentRequest
	resp     svcviews.PaymentCreatedResponse
	err      error
	listed   []views.PaymentView
	verified *bool
}

func (s *stubPaymentService) CreatePayment(_ context.Context, _ string, req svcviews.PaymentRequest) (svcviews.PaymentCreatedResponse, error) {
	s.created = &req
	return s.resp, s.err
}

func (s *stubPaymentService) ListPayments(_ context.Context, _ string, verified *bool) ([]views.PaymentView, error) {
	s.verified = verified
	return s.listed, s.err
}

type stubIdentityService struct {
	in     validation.VerifyAccountInput
	result svcviews.VerifyAccountResult
	err    error
}

func (s *stubIdentityService) VerifyAccountPair(_ context.Context, _ string, in validation.VerifyAccountInput) (svcviews.VerifyAccountResult, error) {
	s.in = in
	return s.result, s.err
}

type stubReviewService struct {
	id   uuid.UUID
	view views.PaymentView
	err  error
}

func (s *stubReviewService) CheckPayment(_ context.Context, _ string, id uuid.UUID) (views.PaymentView, error) {
	s.id = id
	return s.view, s.err
}

func (s *stubReviewService) VerifyPayment(_ context.Context, _ string, id uuid.UUID) (views.PaymentView, error) {
	s.id = id
	return s.view, s.err
}

func (s *stubReviewService) SubmitPayment(_ context.Context, _ string, id uuid.UUID) (views.PaymentView, error) {
	s.id = id
	return s.view, s.err
}

func passThrough(c *gin.Context) { c.Next() }

func testRouter(payments *stubPaymentService, identity *stubIdentityService, review *stubReviewService) *gin.Engine {
	h := NewPaymentHandler(zap.NewNop(), payments, identity, review, nil)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	h.RegisterRoutes(api, passThrough, passThrough)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePayment_OK(t *testing.T) {
	payments := &stubPaymentService{
		resp: svcviews.PaymentCreatedResponse{
			Payment:     views.PaymentView{ID: uuid.NewString(), Amount: "100.00", Status: pkg.PaymentStatusUnchecked},
			RedirectURL: "https://gateway.test/process?x=1",
		},
	}
	r := testRouter(payments, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodPost, "/api/v1/payments", `{"amount":"100","currency":"USD"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, payments.created)
	assert.Equal(t, "100", payments.created.Amount)

	var resp svcviews.PaymentCreatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://gateway.test/process?x=1", resp.RedirectURL)
}

func TestCreatePayment_BadJSON(t *testing.T) {
	r := testRouter(&stubPaymentService{}, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodPost, "/api/v1/payments", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePayment_ServiceErrorMapped(t *testing.T) {
	payments := &stubPaymentService{
		err: pkg.NewAppError(pkg.ErrMissingFieldCode, "missing required fields", nil),
	}
	r := testRouter(payments, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodPost, "/api/v1/payments", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, pkg.ErrMissingFieldCode.Code, resp.Code)
}

func TestListPayments_VerifiedFilter(t *testing.T) {
	payments := &stubPaymentService{listed: []views.PaymentView{}}
	r := testRouter(payments, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodGet, "/api/v1/payments", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, payments.verified)

	w = doJSON(r, http.MethodGet, "/api/v1/payments?verified=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, payments.verified)
	assert.True(t, *payments.verified)

	w = doJSON(r, http.MethodGet, "/api/v1/payments?verified=banana", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyAccount_SanitizesInput(t *testing.T) {
	identity := &stubIdentityService{result: svcviews.VerifyAccountResult{Verified: true}}
	r := testRouter(&stubPaymentService{}, identity, &stubReviewService{})

	body := `{"accountNumber":" 11111111 ","senderEmail":"a@x.com","accountInfo":"22222222","receiverEmail":"b@y.com"}`
	w := doJSON(r, http.MethodPost, "/api/v1/payments/verify-account", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "11111111", identity.in.AccountNumber, "input trimmed before the service sees it")

	var resp svcviews.VerifyAccountResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
}

func TestVerifyAccount_OutcomeStatus(t *testing.T) {
	body := `{"accountNumber":"11111111","senderEmail":"a@x.com","accountInfo":"22222222","receiverEmail":"b@y.com"}`
	cases := []struct {
		name   string
		result svcviews.VerifyAccountResult
		status int
	}{
		{"mismatch", svcviews.VerifyAccountResult{Verified: false, Message: "receiver account mismatch"}, http.StatusBadRequest},
		{"unknown email", svcviews.VerifyAccountResult{Verified: false, Message: "sender email not found", NotFound: true}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			identity := &stubIdentityService{result: tc.result}
			r := testRouter(&stubPaymentService{}, identity, &stubReviewService{})

			w := doJSON(r, http.MethodPost, "/api/v1/payments/verify-account", body)
			assert.Equal(t, tc.status, w.Code)

			var resp svcviews.VerifyAccountResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Verified)
			assert.Equal(t, tc.result.Message, resp.Message)
		})
	}
}

func TestVerifyAccount_MissingFields(t *testing.T) {
	r := testRouter(&stubPaymentService{}, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodPost, "/api/v1/payments/verify-account", `{"accountNumber":"11111111"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, pkg.ErrMissingFieldCode.Code, resp.Code)
}

func TestReviewEndpoints(t *testing.T) {
	id := uuid.New()
	review := &stubReviewService{view: views.PaymentView{ID: id.String(), Status: pkg.PaymentStatusCheckedOk}}
	r := testRouter(&stubPaymentService{}, &stubIdentityService{}, review)

	for _, action := range []string{"check", "verify", "submit"} {
		w := doJSON(r, http.MethodPost, "/api/v1/payments/"+id.String()+"/"+action, "")
		assert.Equal(t, http.StatusOK, w.Code, action)
		assert.Equal(t, id, review.id, action)
	}
}

func TestReviewEndpoints_InvalidID(t *testing.T) {
	r := testRouter(&stubPaymentService{}, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodPost, "/api/v1/payments/not-a-uuid/check", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewEndpoints_PreconditionFailed(t *testing.T) {
	review := &stubReviewService{err: pkg.NewAppError(pkg.ErrPreconditionFailedCode, "cannot verify", nil)}
	r := testRouter(&stubPaymentService{}, &stubIdentityService{}, review)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/"+uuid.NewString()+"/verify", "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestGatewayNotify_DisabledGateway(t *testing.T) {
	r := testRouter(&stubPaymentService{}, &stubIdentityService{}, &stubReviewService{})

	w := doJSON(r, http.MethodPost, "/api/v1/payments/notify", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGatewayNotify_SignatureChecked(t *testing.T) {
	builder := gateway.NewBuilder(gateway.Config{Passphrase: "notify pass"}, http.DefaultClient)
	h := NewPaymentHandler(zap.NewNop(), &stubPaymentService{}, &stubIdentityService{}, &stubReviewService{}, builder)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	h.RegisterRoutes(api, passThrough, passThrough)

	fields := map[string]string{"m_payment_id": "PAY-1", "amount": "10.00", "payment_status": "COMPLETE"}
	sig, err := gateway.NewSigner("notify pass").Sign(fields)
	require.NoError(t, err)

	postForm := func(signature string) *httptest.ResponseRecorder {
		form := url.Values{}
		for k, v := range fields {
			form.Set(k, v)
		}
		form.Set("signature", signature)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, postForm(sig).Code)
	assert.Equal(t, http.StatusBadRequest, postForm("deadbeef").Code)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/services/payment-api/internal/gateway"
	"github.com/novabank/payportal/services/payment-api/internal/services"
	"github.com/novabank/payportal/services/payment-api/internal/validation"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	logger   *zap.Logger
	payments services.PaymentService
	identity services.IdentityService
	review   services.ReviewService
	builder  *gateway.Builder // nil when the gateway integration is disabled
}

func NewPaymentHandler(logger *zap.Logger, payments services.PaymentService,
	identity services.IdentityService, review services.ReviewService, builder *gateway.Builder) *PaymentHandler {
	return &PaymentHandler{
		logger:   logger,
		payments: payments,
		identity: identity,
		review:   review,
		builder:  builder,
	}
}

// RegisterRoutes registers the payment routes. Submission requires a customer
// session; listing, identity verification and the review transitions are
// employee-only. The gateway callback is unauthenticated, its trust comes
// from the signature.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, authenticated, employeeOnly gin.HandlerFunc) {
	r.POST("/payments", authenticated, h.CreatePayment)
	r.POST("/payments/notify", h.GatewayNotify)

	employee := r.Group("", authenticated, employeeOnly)
	employee.GET("/payments", h.ListPayments)
	employee.POST("/payments/verify-account", h.VerifyAccount)
	employee.POST("/payments/:id/check", h.CheckPayment)
	employee.POST("/payments/:id/verify", h.VerifyPayment)
	employee.POST("/payments/:id/submit", h.SubmitPayment)
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	var req svcviews.PaymentRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidFormatCode.Code,
			Message: "invalid request body",
		})
		return
	}

	resp, err := h.payments.CreatePayment(c.Request.Context(), traceID, req)
	if err != nil {
		errResp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(errResp.Status, errResp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPayments returns every payment, newest first. `?verified=true|false`
// filters on the derived verified flag; any other value is rejected.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	var verified *bool
	if raw, ok := c.GetQuery("verified"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
				Code:    pkg.ErrInvalidFormatCode.Code,
				Message: "invalid verified filter",
			})
			return
		}
		verified = &v
	}

	payments, err := h.payments.ListPayments(c.Request.Context(), traceID, verified)
	if err != nil {
		errResp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(errResp.Status, errResp)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) VerifyAccount(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	var req svcviews.VerifyAccountRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidFormatCode.Code,
			Message: "invalid request body",
		})
		return
	}

	in := validation.SanitizeVerifyAccount(validation.VerifyAccountInput{
		AccountNumber: req.AccountNumber,
		SenderEmail:   req.SenderEmail,
		AccountInfo:   req.AccountInfo,
		ReceiverEmail: req.ReceiverEmail,
	})
	if err = in.Validate(); err != nil {
		errResp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(errResp.Status, errResp)
		return
	}

	result, err := h.identity.VerifyAccountPair(c.Request.Context(), traceID, in)
	if err != nil {
		errResp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(errResp.Status, errResp)
		return
	}
	c.JSON(verifyOutcomeStatus(result), result)
}

// verifyOutcomeStatus maps an identity check outcome to its response status:
// an unregistered email is a 404, a registered-but-mismatched account a 400.
// The body carries {verified, message} either way.
func verifyOutcomeStatus(result svcviews.VerifyAccountResult) int {
	switch {
	case result.Verified:
		return http.StatusOK
	case result.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// reviewTransition handles the shared shape of check/verify/submit.
func (h *PaymentHandler) reviewTransition(c *gin.Context,
	transition func(traceID string, id uuid.UUID) (any, error)) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidFormatCode.Code,
			Message: "invalid payment id",
		})
		return
	}

	view, err := transition(traceID, id)
	if err != nil {
		errResp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(errResp.Status, errResp)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PaymentHandler) CheckPayment(c *gin.Context) {
	h.reviewTransition(c, func(traceID string, id uuid.UUID) (any, error) {
		return h.review.CheckPayment(c.Request.Context(), traceID, id)
	})
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	h.reviewTransition(c, func(traceID string, id uuid.UUID) (any, error) {
		return h.review.VerifyPayment(c.Request.Context(), traceID, id)
	})
}

func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	h.reviewTransition(c, func(traceID string, id uuid.UUID) (any, error) {
		return h.review.SubmitPayment(c.Request.Context(), traceID, id)
	})
}

// GatewayNotify receives the gateway's server-to-server payment notification.
// The posted form fields carry their own MD5 signature; an invalid one is
// answered with 400 so the gateway retries against a healthy instance.
func (h *PaymentHandler) GatewayNotify(c *gin.Context) {
	traceID, _ := utils.GetTraceID(c)

	if h.builder == nil {
		c.Status(http.StatusNotFound)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	params := map[string]string{}
	for k := range c.Request.PostForm {
		params[k] = c.Request.PostForm.Get(k)
	}

	ok, err := h.builder.VerifyCallback(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("gateway callback validation failed",
			zap.String(pkg.TraceId, traceID), zap.Error(err))
		c.Status(http.StatusBadGateway)
		return
	}
	if !ok {
		h.logger.Warn("gateway callback signature mismatch",
			zap.String(pkg.TraceId, traceID),
			zap.String("m_payment_id", params["m_payment_id"]))
		c.Status(http.StatusBadRequest)
		return
	}

	h.logger.Info("gateway callback accepted",
		zap.String(pkg.TraceId, traceID),
		zap.String("m_payment_id", params["m_payment_id"]),
		zap.String("payment_status", params["payment_status"]))
	c.Status(http.StatusOK)
}

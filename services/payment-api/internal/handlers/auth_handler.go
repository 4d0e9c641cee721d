package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/utils"
	"github.com/novabank/payportal/services/payment-api/internal/services"
	svcviews "github.com/novabank/payportal/services/payment-api/internal/views"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger  *zap.Logger
	service services.AuthService
}

func NewAuthHandler(logger *zap.Logger, svc services.AuthService) *AuthHandler {
	return &AuthHandler{logger: logger, service: svc}
}

// RegisterRoutes registers the auth routes. Login carries its own stricter
// rate limit on top of the group-wide one.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", loginLimiter, h.Login)
}

func (h *AuthHandler) Register(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	var req svcviews.RegisterRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidFormatCode.Code,
			Message: "invalid request body",
		})
		return
	}

	profile, err := h.service.Register(c.Request.Context(), traceID, req)
	if err != nil {
		resp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) Login(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: err.Error(),
		})
		return
	}

	var req svcviews.LoginRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{
			Code:    pkg.ErrInvalidFormatCode.Code,
			Message: "invalid request body",
		})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), traceID, req)
	if err != nil {
		errResp := pkg.ToErrorResponse(h.logger, traceID, err)
		c.JSON(errResp.Status, errResp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-cms/internal/domains/admin/model"
	"portfolio-cms/internal/domains/admin/service"
	"portfolio-cms/internal/shared/response"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		response.InternalServerError(c, "login failed")
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Me handles GET /auth/me for a bearer-authenticated admin.
func (h *AuthHandler) Me(c *gin.Context) {
	adminID, ok := c.Get("adminID")
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"adminId": adminID})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/takezo-code/kanban-auth/internal/service"
	resp "github.com/takezo-code/kanban-auth/internal/transport/http/response"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

type registerIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"     binding:"omitempty,oneof=ADMIN MEMBER"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
	})
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, resp.OK(out))
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email: in.Email, Password: in.Password,
	})
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

type refreshIn struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(pair))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	if err := h.svc.Logout(c.Request.Context(), in.RefreshToken); err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/takezo-code/kanban-auth/internal/domain"
	"github.com/takezo-code/kanban-auth/internal/service"
	resp "github.com/takezo-code/kanban-auth/internal/transport/http/response"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), c.Param("id"), id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

// Me 当前登录用户自己的记录
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id.UserID, id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

type updateUserIn struct {
	Name  domain.Optional[string] `json:"name"`
	Email domain.Optional[string] `json:"email"`
	Role  domain.Optional[string] `json:"role"`
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in updateUserIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.svc.Update(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
		Name: in.Name, Email: in.Email, Role: in.Role,
	}, id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), id); err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": c.Param("id")}))
}

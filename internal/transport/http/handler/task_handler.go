package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/takezo-code/kanban-auth/internal/domain"
	"github.com/takezo-code/kanban-auth/internal/service"
	mdw "github.com/takezo-code/kanban-auth/internal/transport/http/middleware"
	resp "github.com/takezo-code/kanban-auth/internal/transport/http/response"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler { return &TaskHandler{svc: svc} }

// caller 身份必须由 AuthJWT 放好；缺了说明路由挂错组
func caller(c *gin.Context) (domain.Identity, bool) {
	id, ok := mdw.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
	}
	return id, ok
}

type createTaskIn struct {
	Title       string  `json:"title"       binding:"required,max=255"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assignedTo"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in createTaskIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.svc.Create(c.Request.Context(), service.CreateTaskInput{
		Title: in.Title, Description: in.Description, AssignedTo: in.AssignedTo,
	}, id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, resp.OK(out))
}

func (h *TaskHandler) List(c *gin.Context) {
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

func (h *TaskHandler) Get(c *gin.Context) {
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

type updateTaskIn struct {
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	AssignedTo  domain.Optional[string] `json:"assignedTo"`
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in updateTaskIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.svc.Update(c.Request.Context(), c.Param("id"), service.UpdateTaskInput{
		Title: in.Title, Description: in.Description, AssignedTo: in.AssignedTo,
	}, id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

type moveTaskIn struct {
	NewStatus domain.Status `json:"newStatus" binding:"required"`
}

func (h *TaskHandler) Move(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in moveTaskIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.svc.Move(c.Request.Context(), c.Param("id"), in.NewStatus, id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

func (h *TaskHandler) Delete(c *gin.Context) {
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

func (h *TaskHandler) History(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.svc.History(c.Request.Context(), c.Param("id"), id)
	if err != nil {
		c.JSON(resp.FromError(err))
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

package users

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/http/common"
	"github.com/Rounit002/demohavenn/internal/usecase"
)

type Handler struct {
	Service *usecase.LibraryService
}

func NewHandler(service *usecase.LibraryService) *Handler {
	return &Handler{Service: service}
}

type userResponse struct {
	ID          string   `json:"id"`
	TenantID    string   `json:"tenant_id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	CreatedAt   string   `json:"created_at"`
}

func toUserResponse(user library.StaffUser) userResponse {
	perms := user.Permissions
	if perms == nil {
		perms = []string{}
	}
	return userResponse{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		Role:        user.Role,
		Permissions: perms,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (h *Handler) HandleList(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	items, err := h.Service.ListUsers(c.Request.Context(), tenantID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	resp := make([]userResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toUserResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h *Handler) HandleCreate(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	var req struct {
		Username    string   `json:"username"`
		Password    string   `json:"password"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	user, err := h.Service.CreateUser(c.Request.Context(), tenantID, usecase.StaffUserInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		Permissions: req.Permissions,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

func (h *Handler) HandleUpdateAccess(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	userID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	user, err := h.Service.UpdateUserAccess(c.Request.Context(), tenantID, userID, req.Role, req.Permissions)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

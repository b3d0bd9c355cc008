package branches

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

type branchResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toBranchResponse(branch library.Branch) branchResponse {
	return branchResponse{
		ID:        branch.ID,
		TenantID:  branch.TenantID,
		Name:      branch.Name,
		Address:   branch.Address,
		CreatedAt: branch.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: branch.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (h *Handler) HandleList(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	items, err := h.Service.ListBranches(c.Request.Context(), tenantID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	resp := make([]branchResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toBranchResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"branches": resp})
}

func (h *Handler) HandleGet(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	branchID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	branch, err := h.Service.GetBranch(c.Request.Context(), tenantID, branchID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": toBranchResponse(branch)})
}

func (h *Handler) HandleCreate(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	branch, err := h.Service.CreateBranch(c.Request.Context(), tenantID, usecase.BranchInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"branch": toBranchResponse(branch)})
}

func (h *Handler) HandleUpdate(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	branchID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	branch, err := h.Service.UpdateBranch(c.Request.Context(), tenantID, branchID, usecase.BranchInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": toBranchResponse(branch)})
}

func (h *Handler) HandleDelete(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	branchID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteBranch(c.Request.Context(), tenantID, branchID); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

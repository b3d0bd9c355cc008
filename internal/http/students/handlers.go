package students

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

type studentResponse struct {
	ID             string `json:"id"`
	TenantID       string `json:"tenant_id"`
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`
	CreatedAt      string `json:"created_at"`
}

func toStudentResponse(student library.Student) studentResponse {
	return studentResponse{
		ID:             student.ID,
		TenantID:       student.TenantID,
		Name:           student.Name,
		RegistrationNo: student.RegistrationNo,
		CreatedAt:      student.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (h *Handler) HandleList(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	items, err := h.Service.ListStudents(c.Request.Context(), tenantID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	resp := make([]studentResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toStudentResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"students": resp})
}

func (h *Handler) HandleCreate(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	var req struct {
		Name           string `json:"name"`
		RegistrationNo string `json:"registration_no"`
		Password       string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	student, err := h.Service.CreateStudent(c.Request.Context(), tenantID, usecase.StudentInput{
		Name:           req.Name,
		RegistrationNo: req.RegistrationNo,
		Password:       req.Password,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"student": toStudentResponse(student)})
}

func (h *Handler) HandleDelete(c *gin.Context) {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	studentID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteStudent(c.Request.Context(), tenantID, studentID); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// HandleMe is the student self-service read: the only record a student
// session can reach is its own.
func (h *Handler) HandleMe(c *gin.Context) {
	principal, ok := common.Principal(c)
	if !ok {
		return
	}
	tenantID, ok := common.TenantID(c)
	if !ok {
		return
	}
	student, err := h.Service.GetStudent(c.Request.Context(), tenantID, principal.StudentID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": toStudentResponse(student)})
}

package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/pkg/utils"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// healthCheck handles GET /health
func (s *Server) healthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.config.Version,
	}
	if s.deps.Health != nil {
		response.Components = s.deps.Health()
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

func (s *Server) apiError(c *gin.Context, err error) {
	status := entity.StatusCodeOf(err)
	switch {
	case errors.Is(err, entity.ErrBillNotFound):
		status = http.StatusNotFound
	case status < 400 || status > 599:
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// scopeEmail returns the email the caller may act on. Employees are
// limited to their own bills; admins may name anyone.
func scopeEmail(user entity.User, requested string) (string, bool) {
	if requested == "" {
		if user.IsAdmin() {
			return "", true
		}
		return user.Email, true
	}
	if requested != user.Email && !user.IsAdmin() {
		return "", false
	}
	return requested, true
}

func (s *Server) apiStoreAvailable(c *gin.Context) bool {
	if s.deps.Store == nil {
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "no bill store configured"})
		return false
	}
	return true
}

// apiListBills handles GET /api/v1/bills?email=
func (s *Server) apiListBills(c *gin.Context) {
	if !s.apiStoreAvailable(c) {
		return
	}

	email, ok := scopeEmail(currentUser(c), c.Query("email"))
	if !ok {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "forbidden"})
		return
	}

	bills, err := s.deps.Store.List(c.Request.Context(), email)
	if err != nil {
		s.logger.Error("Failed to list bills", "email", email, "error", err)
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bills})
}

// apiCreateBill handles POST /api/v1/bills. A multipart "file" stores a
// proof; a JSON bill creates a bill record.
func (s *Server) apiCreateBill(c *gin.Context) {
	if !s.apiStoreAvailable(c) {
		return
	}
	if c.ContentType() == gin.MIMEJSON {
		s.apiCreateBillRecord(c)
		return
	}

	email, ok := scopeEmail(currentUser(c), c.PostForm("email"))
	if !ok || email == "" {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "forbidden"})
		return
	}

	upload, err := s.readUpload(c)
	if errors.Is(err, errFileTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, Response{Success: false, Error: err.Error()})
		return
	}
	if err != nil || upload == nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "file is required"})
		return
	}
	if err := utils.ValidateEmail(email); err != nil {
		s.logger.Warn("Creating bill for a non standard email", "email", email)
	}
	upload.Email = email

	result, err := s.deps.Store.Create(c.Request.Context(), upload)
	if err != nil {
		s.logger.Error("Failed to create bill", "email", email, "error", err)
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// apiCreateBillRecord creates a bill without proof from a JSON body
func (s *Server) apiCreateBillRecord(c *gin.Context) {
	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid bill payload"})
		return
	}
	bill.ID = ""

	if !s.scopeBill(c, &bill) {
		return
	}

	if err := s.deps.Store.Update(c.Request.Context(), &bill); err != nil {
		s.logger.Error("Failed to create bill record", "email", bill.Email, "error", err)
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: bill})
}

// apiUpdateBill handles PATCH /api/v1/bills/:id with a JSON bill
func (s *Server) apiUpdateBill(c *gin.Context) {
	if !s.apiStoreAvailable(c) {
		return
	}

	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid bill payload"})
		return
	}
	bill.ID = c.Param("id")

	if !s.scopeBill(c, &bill) {
		return
	}

	// employees may only change their bills while they are pending
	user := currentUser(c)
	if !user.IsAdmin() {
		own, err := s.deps.Store.List(c.Request.Context(), user.Email)
		if err != nil {
			s.logger.Error("Failed to list bills", "email", user.Email, "error", err)
			s.apiError(c, err)
			return
		}
		for _, existing := range own {
			if existing.ID == bill.ID && existing.Status != entity.StatusPending {
				c.JSON(http.StatusConflict, Response{Success: false, Error: "bill already reviewed"})
				return
			}
		}
	}

	// the store refuses bills owned by another email
	if err := s.deps.Store.Update(c.Request.Context(), &bill); err != nil {
		s.logger.Error("Failed to update bill", "bill_id", bill.ID, "error", err)
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bill})
}

// scopeBill sets the owner and status the caller may write, answering the
// request when it may not
func (s *Server) scopeBill(c *gin.Context, bill *entity.Bill) bool {
	user := currentUser(c)

	email, ok := scopeEmail(user, bill.Email)
	if !ok || email == "" {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "forbidden"})
		return false
	}
	bill.Email = email

	if bill.Status == "" || !user.IsAdmin() && bill.Status != entity.StatusPending {
		bill.Status = entity.StatusPending
	}
	if !entity.IsKnownStatus(bill.Status) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown status"})
		return false
	}
	return true
}

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/export"
)

func (s *Server) page(active string) page {
	return page{Lang: s.deps.Factory.Lang(), Active: active}
}

// renderError shows err verbatim on the error page. The status comes from
// an entity.StatusError, 500 otherwise.
func (s *Server) renderError(c *gin.Context, active string, err error) {
	status := entity.StatusCodeOf(err)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.HTML(status, "error.html", errorPage{page: s.page(active), Error: err.Error()})
}

// billsPage handles GET /employee/bills
func (s *Server) billsPage(c *gin.Context) {
	list := s.deps.Factory.BillsList(currentUser(c), &redirectNavigator{})

	bills, err := list.GetBills(c.Request.Context())
	if err != nil {
		s.deps.Metrics.IncListFailure(entity.StatusCodeOf(err))
		s.renderError(c, activeBills, err)
		return
	}

	c.HTML(http.StatusOK, "bills.html", billsPage{page: s.page(activeBills), Bills: bills})
}

// clickNewBill handles POST /employee/bills/new
func (s *Server) clickNewBill(c *gin.Context) {
	nav := &redirectNavigator{}
	s.deps.Factory.BillsList(currentUser(c), nav).HandleClickNewBill()
	c.Redirect(http.StatusSeeOther, nav.Route())
}

// proofModal handles GET /employee/bills/:id/proof?width=N
func (s *Server) proofModal(c *gin.Context) {
	list := s.deps.Factory.BillsList(currentUser(c), &redirectNavigator{})

	bills, err := list.GetBills(c.Request.Context())
	if err != nil {
		s.deps.Metrics.IncListFailure(entity.StatusCodeOf(err))
		s.renderError(c, activeBills, err)
		return
	}

	id := c.Param("id")
	var bill *entity.BillView
	for _, b := range bills {
		if b.ID == id {
			bill = b
			break
		}
	}
	if bill == nil {
		s.renderError(c, activeBills, &entity.StatusError{StatusCode: http.StatusNotFound, Detail: "bill " + id})
		return
	}

	width, _ := strconv.Atoi(c.Query("width"))
	modal := list.HandleClickIconEye(bill, width)

	c.HTML(http.StatusOK, "proof_modal.html", proofPage{page: s.page(activeBills), Modal: modal})
}

// exportBills handles GET /employee/bills/export.xlsx
func (s *Server) exportBills(c *gin.Context) {
	list := s.deps.Factory.BillsList(currentUser(c), &redirectNavigator{})

	bills, err := list.GetBills(c.Request.Context())
	if err != nil {
		s.deps.Metrics.IncListFailure(entity.StatusCodeOf(err))
		s.renderError(c, activeBills, err)
		return
	}

	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", `attachment; filename="notes-de-frais.xlsx"`)
	c.Status(http.StatusOK)
	if err := export.NewBillsWorkbook(s.deps.Factory.Lang()).Write(c.Writer, bills); err != nil {
		s.logger.Error("Failed to export bills", "error", err)
	}
}

// serveProof handles GET <public path>/*path
func (s *Server) serveProof(c *gin.Context) {
	rel := c.Param("path")
	if len(rel) > 0 && rel[0] == '/' {
		rel = rel[1:]
	}

	ctx := c.Request.Context()
	if rel == "" || !s.deps.Files.Exists(ctx, rel) {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(s.deps.Files.GetFullPath(rel))
}

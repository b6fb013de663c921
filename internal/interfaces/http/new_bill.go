package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/i18n"
	"github.com/garyjia/billed/internal/infrastructure/metrics"
	"github.com/garyjia/billed/pkg/utils"
)

var errFileTooLarge = errors.New("proof file too large")

func (s *Server) renderForm(c *gin.Context, status int, form entity.BillForm, input entity.FileInputState, message string) {
	c.HTML(status, "new_bill.html", newBillPage{
		page:         s.page(activeNewBill),
		ExpenseTypes: entity.ExpenseTypes,
		Form:         form,
		FileInput:    input,
		Message:      message,
	})
}

// draftID returns the draft id of the browser, creating one when asked
func (s *Server) draftID(c *gin.Context, create bool) string {
	id, err := c.Cookie(s.config.DraftCookie)
	if err == nil && id != "" {
		return id
	}
	if !create {
		return ""
	}
	id = uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.DraftCookie, id, int(s.config.DraftTTL.Seconds()), "/employee", "", false, true)
	return id
}

func (s *Server) loadDraft(ctx context.Context, id string) *entity.PendingFile {
	if id == "" || s.deps.Drafts == nil {
		return nil
	}
	pending, err := s.deps.Drafts.Load(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load draft", "draft_id", id, "error", err)
		return nil
	}
	return pending
}

func (s *Server) dropDraft(ctx context.Context, id string) {
	if id == "" || s.deps.Drafts == nil {
		return
	}
	if err := s.deps.Drafts.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete draft", "draft_id", id, "error", err)
	}
}

// discardDraft drops the draft and the upload it references, which was
// never submitted
func (s *Server) discardDraft(ctx context.Context, id string) {
	if pending := s.loadDraft(ctx, id); pending != nil {
		if discarder, ok := s.deps.Store.(port.UploadDiscarder); ok {
			if err := discarder.Discard(ctx, pending); err != nil {
				s.logger.Warn("Failed to discard upload", "draft_id", id, "key", pending.Key, "error", err)
			}
		}
	}
	s.dropDraft(ctx, id)
}

// newBillPage handles GET /employee/bill/new. It always opens an empty form.
func (s *Server) newBillPage(c *gin.Context) {
	s.discardDraft(c.Request.Context(), s.draftID(c, false))
	s.renderForm(c, http.StatusOK, entity.BillForm{}, entity.FileInputState{}, "")
}

// readUpload reads the "file" part; a missing part returns nil
func (s *Server) readUpload(c *gin.Context) (*entity.FileUpload, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file part: %w", err)
	}

	limit := s.config.MaxUploadSize
	if limit > 0 && header.Size > limit {
		return nil, errFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file part: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if limit > 0 {
		reader = io.LimitReader(f, limit+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file part: %w", err)
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, errFileTooLarge
	}

	return &entity.FileUpload{
		Name:        utils.SanitizeFileName(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// changeFile handles POST /employee/bill/new/file
func (s *Server) changeFile(c *gin.Context) {
	ctx := c.Request.Context()
	lang := s.deps.Factory.Lang()

	// field values are only echoed back, validation happens on submit
	var form entity.BillForm
	_ = c.ShouldBind(&form)

	draftID := s.draftID(c, true)
	s.discardDraft(ctx, draftID)

	component := s.deps.Factory.NewBillForm(currentUser(c), &redirectNavigator{}, nil)

	upload, err := s.readUpload(c)
	if errors.Is(err, errFileTooLarge) {
		s.deps.Metrics.IncUpload(metrics.OutcomeRejected)
		s.renderForm(c, http.StatusRequestEntityTooLarge, form,
			entity.FileInputState{Message: i18n.T(lang, "file_too_large")}, "")
		return
	}
	if err != nil {
		s.logger.Error("Failed to read proof upload", "error", err)
		s.renderForm(c, http.StatusBadRequest, form,
			entity.FileInputState{Message: i18n.T(lang, "file_upload_failed")}, "")
		return
	}

	if err := component.HandleChangeFile(ctx, upload); err != nil {
		if errors.Is(err, service.ErrUnsupportedFile) {
			s.deps.Metrics.IncUpload(metrics.OutcomeRejected)
			s.renderForm(c, http.StatusUnprocessableEntity, form, component.FileInput(), "")
			return
		}
		s.logger.Error("Unexpected proof selection error", "error", err)
	}

	input := component.FileInput()
	switch pending := component.Pending(); {
	case pending != nil:
		if s.deps.Drafts != nil {
			if err := s.deps.Drafts.Save(ctx, draftID, pending, s.config.DraftTTL); err != nil {
				s.logger.Error("Failed to save draft", "draft_id", draftID, "error", err)
			}
		}
		s.deps.Metrics.IncUpload(metrics.OutcomeSuccess)
	case upload != nil && s.deps.Factory.HasStore():
		s.deps.Metrics.IncUpload(metrics.OutcomeFailure)
		input = entity.FileInputState{Message: i18n.T(lang, "file_upload_failed")}
	}

	s.renderForm(c, http.StatusOK, form, input, "")
}

// submitBill handles POST /employee/bill/new
func (s *Server) submitBill(c *gin.Context) {
	ctx := c.Request.Context()
	draftID := s.draftID(c, false)
	pending := s.loadDraft(ctx, draftID)

	var input entity.FileInputState
	if pending != nil {
		input.Value = pending.FileName
	}

	var form entity.BillForm
	err := c.ShouldBind(&form)
	if err == nil {
		err = form.ValidateNumbers()
	}
	if err != nil {
		s.logger.Info("Rejected incomplete bill form", "error", err)
		s.renderForm(c, http.StatusBadRequest, form, input, i18n.T(s.deps.Factory.Lang(), "form_invalid"))
		return
	}

	nav := &redirectNavigator{}
	component := s.deps.Factory.NewBillForm(currentUser(c), nav, pending)

	err = component.HandleSubmit(ctx, form)
	if err != nil {
		s.deps.Metrics.IncSubmit(metrics.OutcomeFailure)
	} else {
		s.deps.Metrics.IncSubmit(metrics.OutcomeSuccess)
	}

	if route := nav.Route(); route != "" {
		if err != nil {
			s.discardDraft(ctx, draftID)
		} else {
			s.dropDraft(ctx, draftID)
		}
		c.Redirect(http.StatusSeeOther, route)
		return
	}

	status := entity.StatusCodeOf(err)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	s.renderForm(c, status, form, input, err.Error())
}

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/application/service"
	"github.com/hcaumo/VisaProject/internal/application/workflow"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
	domainwf "github.com/hcaumo/VisaProject/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	baseURL  string
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, baseURL string, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Fields  interface{} `json:"fields,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmitRequest carries the redirect URLs for a submission. Omitted URLs
// fall back to paths under the server's base URL.
type SubmitRequest struct {
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
	Actor      string `json:"actor"`
}

// SubmitResponse is the answer to a submission: where to send the browser.
type SubmitResponse struct {
	Application *entity.VisaApplication `json:"application"`
	SessionID   string                  `json:"session_id"`
	RedirectURL string                  `json:"redirect_url"`
}

// ActorRequest carries just the acting party of a lifecycle call.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// DecisionRequest carries a terminal decision.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Actor    string `json:"actor"`
}

// StateResponse reports the current state and what can happen next.
type StateResponse struct {
	State             string   `json:"state"`
	PermittedTriggers []string `json:"permitted_triggers"`
}

// AgreementStatusResponse reports the signature provider's view of the
// agreement.
type AgreementStatusResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	SignedURL  string `json:"signed_url,omitempty"`
}

// ListQuery represents common pagination query parameters
type ListQuery struct {
	UserID string `form:"user_id"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// DocumentUpdateRequest carries editable document metadata.
type DocumentUpdateRequest struct {
	Name     string `json:"name"`
	Notes    string `json:"notes"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// DocumentStatusRequest carries a review decision on a document.
type DocumentStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Notes    string `json:"notes"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListApplications handles GET /api/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	var req ListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	// Set defaults
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	apps, err := h.services.Applications.List(c.Request.Context(), req.UserID, req.Limit, req.Offset)
	if err != nil {
		h.fail(c, "failed to list applications", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: apps})
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var app entity.VisaApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	created, err := h.services.Applications.Create(c.Request.Context(), &app)
	if err != nil {
		h.fail(c, "failed to create application", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	app, err := h.services.Applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get application", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// UpdateApplication handles PUT /api/applications/:id
func (h *Handlers) UpdateApplication(c *gin.Context) {
	var app entity.VisaApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	updated, err := h.services.Applications.Update(c.Request.Context(), c.Param("id"), &app)
	if err != nil {
		h.fail(c, "failed to update application", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: updated})
}

// GetApplicationHistory handles GET /api/applications/:id/history
func (h *Handlers) GetApplicationHistory(c *gin.Context) {
	history, err := h.services.Applications.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get application history", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: history})
}

// GetApplicationState handles GET /api/applications/:id/state
func (h *Handlers) GetApplicationState(c *gin.Context) {
	state, triggers, err := h.services.Engine.CurrentState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get application state", err)
		return
	}

	names := make([]string, 0, len(triggers))
	for _, t := range triggers {
		names = append(names, t.String())
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: StateResponse{
		State:             state.String(),
		PermittedTriggers: names,
	}})
}

// SubmitApplication handles POST /api/applications/:id/submit
func (h *Handlers) SubmitApplication(c *gin.Context) {
	id := c.Param("id")

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid request body")
		return
	}
	if req.SuccessURL == "" {
		req.SuccessURL = fmt.Sprintf("%s/api/applications/%s/payment/complete", h.baseURL, id)
	}
	if req.CancelURL == "" {
		req.CancelURL = fmt.Sprintf("%s/api/applications/%s", h.baseURL, id)
	}

	result, err := h.services.Engine.Submit(c.Request.Context(), id, workflow.SubmitOptions{
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Actor:      req.Actor,
	})
	if err != nil {
		h.fail(c, "failed to submit application", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: SubmitResponse{
		Application: result.Application,
		SessionID:   result.Payment.SessionID,
		RedirectURL: result.Payment.RedirectURL,
	}})
}

// CompletePayment handles POST /api/applications/:id/payment/complete
func (h *Handlers) CompletePayment(c *gin.Context) {
	var req ActorRequest
	_ = c.ShouldBindJSON(&req)

	app, err := h.services.Engine.CompletePayment(c.Request.Context(), c.Param("id"), req.Actor)
	if err != nil && app == nil {
		h.fail(c, "failed to complete payment", err)
		return
	}

	// A dispatch failure still moved the application; report the state it
	// landed in together with the failure.
	resp := Response{Success: err == nil, Data: app}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// RetryAgreement handles POST /api/applications/:id/agreement/retry
func (h *Handlers) RetryAgreement(c *gin.Context) {
	var req ActorRequest
	_ = c.ShouldBindJSON(&req)

	app, err := h.services.Engine.RetryAgreement(c.Request.Context(), c.Param("id"), req.Actor)
	if err != nil && app == nil {
		h.fail(c, "failed to retry agreement", err)
		return
	}

	resp := Response{Success: err == nil, Data: app}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetAgreementStatus handles GET /api/applications/:id/agreement
func (h *Handlers) GetAgreementStatus(c *gin.Context) {
	app, err := h.services.Applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get application", err)
		return
	}

	if app.LegalAgreement.DocumentID == "" {
		h.badRequest(c, "no agreement has been dispatched for this application")
		return
	}

	status, err := h.services.Agreements.Status(c.Request.Context(), app.LegalAgreement.DocumentID)
	if err != nil {
		h.fail(c, "failed to get agreement status", err)
		return
	}

	signedURL := app.LegalAgreement.SignedURL
	if signedURL == "" {
		// Empty is a valid answer while signatures are pending.
		signedURL, err = h.services.Agreements.SignedURL(c.Request.Context(), app.LegalAgreement.DocumentID)
		if err != nil {
			h.fail(c, "failed to get signed document URL", err)
			return
		}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: AgreementStatusResponse{
		DocumentID: app.LegalAgreement.DocumentID,
		Status:     status,
		SignedURL:  signedURL,
	}})
}

// DecideApplication handles POST /api/applications/:id/decision
func (h *Handlers) DecideApplication(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "decision is required")
		return
	}

	app, err := h.services.Engine.Decide(c.Request.Context(), c.Param("id"), req.Decision, req.Actor)
	if err != nil {
		h.fail(c, "failed to record decision", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// ListApplicationDocuments handles GET /api/applications/:id/documents
func (h *Handlers) ListApplicationDocuments(c *gin.Context) {
	docs, err := h.services.Documents.ListByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to list documents", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: docs})
}

// ListDocuments handles GET /api/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	var req ListQuery
	if err := c.ShouldBindQuery(&req); err != nil || req.UserID == "" {
		h.badRequest(c, "user_id is required")
		return
	}

	docs, err := h.services.Documents.ListByUser(c.Request.Context(), req.UserID)
	if err != nil {
		h.fail(c, "failed to list documents", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: docs})
}

// UploadDocument handles POST /api/documents
func (h *Handlers) UploadDocument(c *gin.Context) {
	var doc entity.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	created, err := h.services.Documents.Upload(c.Request.Context(), &doc, service.Actor{
		UserID: doc.UserID,
	})
	if err != nil {
		h.fail(c, "failed to upload document", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// GetDocument handles GET /api/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, err := h.services.Documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get document", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// UpdateDocument handles PUT /api/documents/:id
func (h *Handlers) UpdateDocument(c *gin.Context) {
	var req DocumentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	doc, err := h.services.Documents.Update(c.Request.Context(), c.Param("id"), req.Name, req.Notes, service.Actor{
		UserID: req.UserID,
		Name:   req.UserName,
	})
	if err != nil {
		h.fail(c, "failed to update document", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// UpdateDocumentStatus handles PUT /api/documents/:id/status
func (h *Handlers) UpdateDocumentStatus(c *gin.Context) {
	var req DocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "status is required")
		return
	}

	doc, err := h.services.Documents.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes, service.Actor{
		UserID: req.UserID,
		Name:   req.UserName,
	})
	if err != nil {
		h.fail(c, "failed to update document status", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *Handlers) DeleteDocument(c *gin.Context) {
	var req DocumentUpdateRequest
	_ = c.ShouldBindJSON(&req)

	err := h.services.Documents.Delete(c.Request.Context(), c.Param("id"), service.Actor{
		UserID: req.UserID,
		Name:   req.UserName,
	})
	if err != nil {
		h.fail(c, "failed to delete document", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// maxUploadSize caps document uploads at 20 MiB.
const maxUploadSize = 20 << 20

// UploadDocumentContent handles PUT /api/documents/:id/content. The file
// arrives as the "file" part of a multipart form.
func (h *Handlers) UploadDocumentContent(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		h.badRequest(c, "file exceeds the upload size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, "failed to read uploaded file", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, "failed to read uploaded file", err)
		return
	}

	doc, err := h.services.Documents.StoreContent(
		c.Request.Context(),
		c.Param("id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		content,
		service.Actor{
			UserID: c.PostForm("user_id"),
			Name:   c.PostForm("user_name"),
		},
	)
	if err != nil {
		h.fail(c, "failed to store document content", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// DownloadDocumentContent handles GET /api/documents/:id/content
func (h *Handlers) DownloadDocumentContent(c *gin.Context) {
	content, mimeType, err := h.services.Documents.Content(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to read document content", err)
		return
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	c.Data(http.StatusOK, mimeType, content)
}

// GetDocumentHistory handles GET /api/documents/:id/history
func (h *Handlers) GetDocumentHistory(c *gin.Context) {
	events, err := h.services.Documents.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get document history", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// ExportApplications handles GET /api/reports/applications
func (h *Handlers) ExportApplications(c *gin.Context) {
	workbook, err := h.services.Reports.ApplicationsWorkbook(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to export applications", err)
		return
	}

	filename := fmt.Sprintf("applications_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// fail maps service errors onto HTTP status codes.
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "validation failed",
			Fields:  ve.Fails,
		})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	case errors.Is(err, service.ErrNotEditable),
		errors.Is(err, domainwf.ErrInvalidTransition),
		errors.Is(err, domainwf.ErrGuardFailed):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, port.ErrProviderTimeout):
		c.JSON(http.StatusGatewayTimeout, Response{Success: false, Error: err.Error()})
	case errors.Is(err, port.ErrProviderFailure):
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
	}
}

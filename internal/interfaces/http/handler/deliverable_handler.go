package handler

import (
	"io"
	"net/http"

	deliveryapp "github.com/clientdesk/backend/internal/application/delivery"
	"github.com/clientdesk/backend/internal/interfaces/http/dto"
	"github.com/clientdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Default cap for uploaded artifacts (100MB)
const defaultMaxUploadSize = 100 << 20

// DeliverableHandler handles operator-facing deliverable management:
// uploading new versions and handing them to client review
type DeliverableHandler struct {
	BaseHandler
	deliveryService *deliveryapp.DeliveryService
	maxUploadSize   int64
}

// NewDeliverableHandler creates a new DeliverableHandler
func NewDeliverableHandler(deliveryService *deliveryapp.DeliveryService, maxUploadSize int64) *DeliverableHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &DeliverableHandler{
		deliveryService: deliveryService,
		maxUploadSize:   maxUploadSize,
	}
}

// Upload godoc
//
//	@ID				uploadDeliverable
//	@Summary		Upload a deliverable version
//	@Description	Stores the artifact and produces the watermarked preview; a new version is allocated per upload
//	@Tags			deliverables
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string								true	"Project ID"
//	@Param			file	formData	file								true	"Artifact file"
//	@Success		201		{object}	APIResponse[DeliverableResponse]	"Created deliverable"
//	@Failure		404		{object}	ErrorResponse						"Project not found"
//	@Failure		413		{object}	ErrorResponse						"File too large"
//	@Failure		422		{object}	ErrorResponse						"Project not accepting uploads"
//	@Router			/projects/{id}/deliverables [post]
func (h *DeliverableHandler) Upload(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	// Check file size
	if header.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum upload size")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum upload size")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	uploadedBy := middleware.GetJWTUsername(c)
	if uploadedBy == "" {
		uploadedBy = middleware.GetJWTUserID(c)
	}

	d, err := h.deliveryService.UploadDeliverable(c.Request.Context(), deliveryapp.UploadDeliverableRequest{
		ProjectID:  projectID,
		FileName:   header.Filename,
		MimeType:   mimeType,
		Data:       data,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDeliverableResponse(d))
}

// List godoc
//
//	@ID				listDeliverables
//	@Summary		List a project's deliverable versions
//	@Description	All uploaded versions, newest first
//	@Tags			deliverables
//	@Produce		json
//	@Param			id	path		string								true	"Project ID"
//	@Success		200	{object}	APIResponse[[]DeliverableResponse]	"Deliverable versions"
//	@Failure		404	{object}	ErrorResponse						"Project not found"
//	@Router			/projects/{id}/deliverables [get]
func (h *DeliverableHandler) List(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	deliverables, err := h.deliveryService.ListDeliverables(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]DeliverableResponse, 0, len(deliverables))
	for i := range deliverables {
		items = append(items, toDeliverableResponse(&deliverables[i]))
	}
	h.Success(c, items)
}

// MarkReady godoc
//
//	@ID				markDeliverableReady
//	@Summary		Hand a deliverable to client review
//	@Description	Transitions the deliverable DRAFT -> REVIEW and the project into IN_REVIEW
//	@Tags			deliverables
//	@Produce		json
//	@Param			id	path		string								true	"Deliverable ID"
//	@Success		200	{object}	APIResponse[DeliverableResponse]	"Updated deliverable"
//	@Failure		404	{object}	ErrorResponse						"Deliverable not found"
//	@Failure		422	{object}	ErrorResponse						"Deliverable not in DRAFT"
//	@Router			/deliverables/{id}/ready [post]
func (h *DeliverableHandler) MarkReady(c *gin.Context) {
	deliverableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deliverable ID")
		return
	}

	d, err := h.deliveryService.MarkReady(c.Request.Context(), deliverableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDeliverableResponse(d))
}

// RegisterRoutes registers all operator deliverable routes
func (h *DeliverableHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.POST("/:id/deliverables", h.Upload)
		projects.GET("/:id/deliverables", h.List)
	}
	deliverables := rg.Group("/deliverables")
	{
		deliverables.POST("/:id/ready", h.MarkReady)
	}
}

package handler

import (
	deliveryapp "github.com/clientdesk/backend/internal/application/delivery"
	projectapp "github.com/clientdesk/backend/internal/application/project"
	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PortalHandler handles the client-facing portal. Clients hold no accounts;
// access is keyed by the project's unguessable public ID and the deliverable
// UUIDs surfaced through it, so these routes sit outside JWT auth.
type PortalHandler struct {
	BaseHandler
	projectService  *projectapp.ProjectService
	deliveryService *deliveryapp.DeliveryService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(projectService *projectapp.ProjectService, deliveryService *deliveryapp.DeliveryService) *PortalHandler {
	return &PortalHandler{
		projectService:  projectService,
		deliveryService: deliveryService,
	}
}

// GetProjectState godoc
//
//	@ID				getPortalProjectState
//	@Summary		Get the portal view of a project
//	@Description	Project state, latest deliverable version, and feedback history
//	@Tags			portal
//	@Produce		json
//	@Param			publicID	path		string								true	"Project public ID"
//	@Success		200			{object}	APIResponse[PortalStateResponse]	"Portal state"
//	@Failure		404			{object}	ErrorResponse						"Project not found"
//	@Router			/portal/projects/{publicID} [get]
func (h *PortalHandler) GetProjectState(c *gin.Context) {
	state, err := h.projectService.GetPortalState(c.Request.Context(), c.Param("publicID"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPortalStateResponse(state))
}

// Download godoc
//
//	@ID				downloadDeliverable
//	@Summary		Download a deliverable
//	@Description	Evaluates the payment and release gate; serves the clean final or a watermarked draft
//	@Tags			portal
//	@Produce		json
//	@Param			id	path		string								true	"Deliverable ID"
//	@Success		200	{object}	APIResponse[AccessGrantResponse]	"Time-limited download URL"
//	@Failure		402	{object}	ErrorResponse						"Payment required"
//	@Failure		404	{object}	ErrorResponse						"Deliverable not found"
//	@Router			/portal/deliverables/{id}/download [get]
func (h *PortalHandler) Download(c *gin.Context) {
	deliverableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deliverable ID")
		return
	}

	grant, err := h.deliveryService.ResolveDownload(c.Request.Context(), deliverableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccessGrantResponse(grant))
}

// Preview godoc
//
//	@ID				previewDeliverable
//	@Summary		View a deliverable inline
//	@Description	Always serves the watermarked rendition regardless of payment or release state
//	@Tags			portal
//	@Produce		json
//	@Param			id	path		string								true	"Deliverable ID"
//	@Success		200	{object}	APIResponse[AccessGrantResponse]	"Time-limited view URL"
//	@Failure		404	{object}	ErrorResponse						"Deliverable not found"
//	@Router			/portal/deliverables/{id}/preview [get]
func (h *PortalHandler) Preview(c *gin.Context) {
	deliverableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deliverable ID")
		return
	}

	grant, err := h.deliveryService.ResolveView(c.Request.Context(), deliverableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccessGrantResponse(grant))
}

// SubmitFeedback godoc
//
//	@ID				submitFeedback
//	@Summary		Submit feedback on a deliverable
//	@Description	Persists the feedback record; NEEDS_REVISION requires notes
//	@Tags			portal
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Deliverable ID"
//	@Param			request	body		SubmitFeedbackRequest			true	"Feedback"
//	@Success		201		{object}	APIResponse[FeedbackResponse]	"Created feedback"
//	@Failure		404		{object}	ErrorResponse					"Deliverable not found"
//	@Failure		422		{object}	ErrorResponse					"Notes required for revision"
//	@Router			/portal/deliverables/{id}/feedback [post]
func (h *PortalHandler) SubmitFeedback(c *gin.Context) {
	deliverableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deliverable ID")
		return
	}

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	fb, err := h.deliveryService.SubmitFeedback(c.Request.Context(), deliveryapp.SubmitFeedbackRequest{
		DeliverableID:  deliverableID,
		Type:           delivery.FeedbackType(req.Type),
		Notes:          req.Notes,
		SubmitterName:  req.SubmitterName,
		SubmitterEmail: req.SubmitterEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFeedbackResponse(fb))
}

// SignOff godoc
//
//	@ID				signOffDeliverable
//	@Summary		Sign off a deliverable
//	@Description	Records the sign-off and attempts the release transition; refused without an approval feedback or with an unsatisfied payment gate
//	@Tags			portal
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Deliverable ID"
//	@Param			request	body		SignOffRequest					true	"Signer identity"
//	@Success		201		{object}	APIResponse[SignoffResponse]	"Recorded sign-off"
//	@Failure		402		{object}	ErrorResponse					"Payment required"
//	@Failure		404		{object}	ErrorResponse					"Deliverable not found"
//	@Failure		422		{object}	ErrorResponse					"Approval feedback required"
//	@Router			/portal/deliverables/{id}/signoff [post]
func (h *PortalHandler) SignOff(c *gin.Context) {
	deliverableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deliverable ID")
		return
	}

	var req SignOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	signoff, err := h.deliveryService.SignOff(c.Request.Context(), deliveryapp.SignOffRequest{
		DeliverableID: deliverableID,
		SignerName:    req.SignerName,
		SignerEmail:   req.SignerEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSignoffResponse(signoff))
}

// RegisterRoutes registers all portal routes
func (h *PortalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	portal := rg.Group("/portal")
	{
		portal.GET("/projects/:publicID", h.GetProjectState)
		portal.GET("/deliverables/:id/download", h.Download)
		portal.GET("/deliverables/:id/preview", h.Preview)
		portal.POST("/deliverables/:id/feedback", h.SubmitFeedback)
		portal.POST("/deliverables/:id/signoff", h.SignOff)
	}
}

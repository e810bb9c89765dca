package handler

import (
	billingapp "github.com/clientdesk/backend/internal/application/billing"
	projectapp "github.com/clientdesk/backend/internal/application/project"
	"github.com/clientdesk/backend/internal/domain/shared"
	"github.com/clientdesk/backend/internal/infrastructure/auth"
	"github.com/clientdesk/backend/internal/interfaces/http/dto"
	"github.com/clientdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles project stage transitions, the manual payment
// override, and the reconciliation list. All routes here are operator-facing
// and sit behind JWT auth.
type ProjectHandler struct {
	BaseHandler
	projectService *projectapp.ProjectService
	paymentService *billingapp.PaymentService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *projectapp.ProjectService, paymentService *billingapp.PaymentService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		paymentService: paymentService,
	}
}

// MarkPaid godoc
//
//	@ID				markProjectPaid
//	@Summary		Manually mark a project as paid
//	@Description	Administrative override outside the webhook flow; records operator and reason in the ledger
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string										true	"Project ID"
//	@Param			request	body		MarkPaidRequest								true	"Audit reason"
//	@Success		200		{object}	APIResponse[PaymentResultResponse]			"Payment applied (or idempotently skipped)"
//	@Failure		403		{object}	ErrorResponse								"Requires admin role"
//	@Failure		404		{object}	ErrorResponse								"Project not found"
//	@Failure		422		{object}	ErrorResponse								"Project is refunded"
//	@Router			/admin/projects/{id}/mark-paid [post]
func (h *ProjectHandler) MarkPaid(c *gin.Context) {
	if middleware.GetJWTRole(c) != auth.RoleAdmin {
		h.Forbidden(c, "Manual payment override requires admin role")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Operator identity is required")
		return
	}

	result, err := h.paymentService.MarkPaidManually(c.Request.Context(), projectID, operatorID.String(), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResultResponse(result))
}

// ListUnmatchedEvents godoc
//
//	@ID				listUnmatchedPaymentEvents
//	@Summary		List unmatched payment events
//	@Description	Ledger entries that could not be resolved to a project, for manual reconciliation
//	@Tags			admin
//	@Produce		json
//	@Param			page		query		int										false	"Page number"		default(1)
//	@Param			page_size	query		int										false	"Page size"			default(20)
//	@Success		200			{object}	APIResponse[[]PaymentEventResponse]		"Unmatched events"
//	@Router			/admin/payment-events/unmatched [get]
func (h *ProjectHandler) ListUnmatchedEvents(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	events, err := h.paymentService.ListUnmatched(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]PaymentEventResponse, 0, len(events.Items))
	for i := range events.Items {
		items = append(items, toPaymentEventResponse(&events.Items[i]))
	}
	h.SuccessWithMeta(c, items, events.Total, events.Page, events.PageSize)
}

// StartDelivery godoc
//
//	@ID				startProjectDelivery
//	@Summary		Start delivery on a project
//	@Description	Transitions the project SCHEDULED -> IN_DELIVERY
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		string							true	"Project ID"
//	@Success		200	{object}	APIResponse[ProjectResponse]	"Updated project"
//	@Failure		404	{object}	ErrorResponse					"Project not found"
//	@Failure		422	{object}	ErrorResponse					"Invalid stage transition"
//	@Router			/admin/projects/{id}/start [post]
func (h *ProjectHandler) StartDelivery(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	p, err := h.projectService.StartDelivery(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(p))
}

// Complete godoc
//
//	@ID				completeProject
//	@Summary		Complete a project
//	@Description	Transitions the project RELEASED -> COMPLETE
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		string							true	"Project ID"
//	@Success		200	{object}	APIResponse[ProjectResponse]	"Updated project"
//	@Failure		404	{object}	ErrorResponse					"Project not found"
//	@Failure		422	{object}	ErrorResponse					"Invalid stage transition"
//	@Router			/admin/projects/{id}/complete [post]
func (h *ProjectHandler) Complete(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	p, err := h.projectService.Complete(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(p))
}

// RegisterRoutes registers all admin project routes
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.POST("/projects/:id/mark-paid", h.MarkPaid)
		admin.POST("/projects/:id/start", h.StartDelivery)
		admin.POST("/projects/:id/complete", h.Complete)
		admin.GET("/payment-events/unmatched", h.ListUnmatchedEvents)
	}
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

// InvoiceUseCase is the invoice application service consumed by InvoiceHandler
type InvoiceUseCase interface {
	GetOrCreate(ctx context.Context, eventID string, requester planning.Requester) (*billingapp.InvoiceResponse, error)
	Get(ctx context.Context, id uuid.UUID, requester planning.Requester) (*billingapp.InvoiceResponse, error)
	List(ctx context.Context, req billingapp.ListInvoicesRequest, requester planning.Requester) (*shared.Paginated[billingapp.InvoiceResponse], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, requester planning.Requester) (*billingapp.InvoiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID, requester planning.Requester) error
}

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceUseCase
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// GetEventInvoice godoc
//
//	@ID				getEventInvoice
//	@Summary		Get or create the invoice of an event
//	@Description	Returns the event's invoice, pricing the event's services into a new one on first access
//	@Tags			invoices
//	@Produce		json
//	@Param			eventId	path		string	true	"Event ID"
//	@Success		200		{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse	"An event service no longer exists in the catalog"
//	@Failure		503		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/events/{eventId}/invoice [get]
func (h *InvoiceHandler) GetEventInvoice(c *gin.Context) {
	invoice, err := h.invoices.GetOrCreate(c.Request.Context(), c.Param("eventId"), requester(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GetInvoice godoc
//
//	@ID				getInvoice
//	@Summary		Get invoice by ID
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		200	{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.Get(c.Request.Context(), id, requester(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListInvoices godoc
//
//	@ID				listInvoices
//	@Summary		List invoices
//	@Description	Admin listing with status and event filters
//	@Tags			invoices
//	@Produce		json
//	@Param			status		query		string	false	"Invoice status"	Enums(Pending, Paid, Unpaid, Canceled)
//	@Param			event_id	query		string	false	"Event ID"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Sort field"	Enums(created_at, updated_at, total_amount, status)
//	@Param			order_dir	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200			{object}	APIResponse[[]billingapp.InvoiceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var req billingapp.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.invoices.List(c.Request.Context(), req, requester(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// UpdateInvoiceStatus godoc
//
//	@ID				updateInvoiceStatus
//	@Summary		Change an invoice status
//	@Description	Admin override; Paid invoices cannot be changed
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Invoice ID"	format(uuid)
//	@Param			request	body		billingapp.UpdateInvoiceStatusRequest	true	"New status"
//	@Success		200		{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), id, req.Status, requester(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// DeleteInvoice godoc
//
//	@ID				deleteInvoice
//	@Summary		Delete an invoice
//	@Description	Admin only; invoices with payment attempts cannot be deleted
//	@Tags			invoices
//	@Param			id	path	string	true	"Invoice ID"	format(uuid)
//	@Success		204
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id, requester(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

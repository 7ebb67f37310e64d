package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"folio/internal/domain/orders"
	"folio/internal/params"

	"github.com/go-chi/chi/v5"
)

// AdminOrderListResponse is the payload inside the standard envelope { "data": ... }.
type AdminOrderListResponse struct {
	Orders     []*orders.PaymentOrder `json:"orders"`
	Pagination params.Pagination      `json:"pagination"`
	Status     string                 `json:"status"` // applied filter (echoed back)
}

type envelope struct {
	Data any `json:"data"`
}

// referenced only from swag annotations
var _ = envelope{}

// adminListOrdersHandler godoc
//
//	@Summary		List payment orders (admin)
//	@Description	Lists persisted payment orders, newest first, with an optional status filter and pagination.
//	@Tags			Admin-Orders
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(pending,completed,failed)
//	@Param			page	query		int		false	"Page number (default: 1)"
//	@Param			limit	query		int		false	"Items per page (default: 20, max: 100)"
//	@Success		200		{object}	envelope{data=AdminOrderListResponse}
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/admin/orders [get]
//	@Security		ApiKeyAuth
func (app *application) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	status := params.OrderStatus(r.URL.Query())
	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Orders.List(ctx, status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if list == nil {
		list = []*orders.PaymentOrder{}
	}
	p.ComputeMeta(total)

	if err := app.jsonResponse(w, http.StatusOK, AdminOrderListResponse{
		Orders:     list,
		Pagination: p,
		Status:     status,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminGetOrderHandler godoc
//
//	@Summary		Get payment order (admin)
//	@Tags			Admin-Orders
//	@Produce		json
//	@Param			orderID	path		string	true	"Gateway order id"
//	@Success		200		{object}	envelope{data=orders.PaymentOrder}
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		404		{object}	error	"Not Found"
//	@Router			/admin/orders/{orderID} [get]
//	@Security		ApiKeyAuth
func (app *application) adminGetOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		app.badRequestResponse(w, r, errors.New("order id is required"))
		return
	}

	if admin := getAdminFromContext(r); admin != nil {
		app.logger.Infow("admin order lookup", "admin", admin.Email, "order_id", orderID)
	}

	o, err := app.store.Orders.GetByGatewayOrderID(ctx, orderID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if o == nil {
		app.notFoundResponse(w, r, errors.New("payment order not found: "+orderID))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, o); err != nil {
		app.internalServerError(w, r, err)
	}
}

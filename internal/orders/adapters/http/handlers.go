package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dejobratic/marketplace/internal/authz"
	"github.com/dejobratic/marketplace/internal/orders/app"
	"github.com/dejobratic/marketplace/internal/orders/domain"
	"github.com/dejobratic/marketplace/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order operations. Caller identity
// is taken from gateway-injected headers; authentication itself happens
// upstream.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/orders", h.createOrder)
	mux.HandleFunc("GET /v1/orders", h.listUserOrders)
	mux.HandleFunc("GET /v1/orders/all", h.listAllOrders)
	mux.HandleFunc("GET /v1/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /v1/orders/{id}", h.updateOrder)
	mux.HandleFunc("DELETE /v1/orders/{id}", h.deleteOrder)
	mux.HandleFunc("POST /v1/orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("POST /v1/orders/{id}/request-cancel", h.requestCancellation)
	mux.HandleFunc("PATCH /v1/orders/{id}/status", h.changeOrderStatus)
	mux.HandleFunc("PATCH /v1/orders/{id}/delivered", h.changeDelivered)
	mux.HandleFunc("PATCH /v1/orders/{orderID}/items/{productID}/status", h.updateOrderItemStatus)
	mux.HandleFunc("GET /v1/vendor/orders", h.listVendorOrders)
	mux.HandleFunc("GET /v1/vendor/order-items", h.listVendorItems)
}

// callerFrom reads the identity the gateway attached to the request.
func callerFrom(r *http.Request) (authz.Caller, bool) {
	caller := authz.Caller{
		UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		Email:  strings.TrimSpace(r.Header.Get("X-User-Email")),
		Role:   authz.Role(strings.TrimSpace(r.Header.Get("X-User-Role"))),
	}
	return caller, caller.UserID != ""
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	if stored, err := h.service.GetIdempotentResponse(ctx, idemKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	} else if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload app.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	payload.UserID = caller.UserID
	payload.Email = caller.Email

	order, err := h.service.CreateOrder(ctx, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    order.ID,
	}
	if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	order, err := h.service.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Vendors see only their own lines; callers with no stake in the
	// order see nothing at all.
	items := authz.VisibleItems(caller, *order)
	if !caller.IsStaff() && caller.UserID != order.UserID && len(items) == 0 {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	order.Items = items

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	orders, err := h.service.ListUserOrders(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || !authz.CanManageOrder(caller) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}

	orders, err := h.service.ListAllOrders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var payload app.UpdateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	payload.OrderID = r.PathValue("id")
	payload.CallerUserID = caller.UserID

	order, err := h.service.UpdateOrder(r.Context(), payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || !authz.CanManageOrder(caller) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}

	if err := h.service.DeleteOrder(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || !authz.CanManageOrder(caller) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}

	var payload struct {
		Note string `json:"note"`
	}
	// An empty body means an empty note, not a malformed request.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.CancelOrder(r.Context(), r.PathValue("id"), payload.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) requestCancellation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	orderID := r.PathValue("id")
	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if order.UserID != caller.UserID {
		writeError(w, http.StatusForbidden, "you can only request cancellation of your own orders")
		return
	}

	if err := h.service.RequestCancellation(r.Context(), orderID, caller.UserID, caller.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"message": "cancellation requested"})
}

func (h *Handler) changeOrderStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || !authz.CanManageOrder(caller) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}

	var payload struct {
		Status domain.OrderStatus `json:"order_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.ChangeOrderStatus(r.Context(), r.PathValue("id"), payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) changeDelivered(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || !authz.CanManageOrder(caller) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}

	var payload struct {
		Delivered bool `json:"delivered"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.ChangeDelivered(r.Context(), r.PathValue("id"), payload.Delivered)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) updateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if caller.Role != authz.RoleVendor {
		writeError(w, http.StatusForbidden, "vendors only")
		return
	}

	var payload struct {
		Status domain.ItemStatus `json:"order_item_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	err := h.service.UpdateOrderItemStatus(
		r.Context(),
		r.PathValue("orderID"),
		r.PathValue("productID"),
		caller.Email,
		payload.Status,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "item status updated"})
}

func (h *Handler) listVendorOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || caller.Role != authz.RoleVendor {
		writeError(w, http.StatusForbidden, "vendors only")
		return
	}

	orders, err := h.service.ListVendorOrders(r.Context(), caller.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) listVendorItems(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok || caller.Role != authz.RoleVendor {
		writeError(w, http.StatusForbidden, "vendors only")
		return
	}

	items, err := h.service.ListVendorItems(r.Context(), caller.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order_items": items})
}

// writeServiceError maps application sentinels onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ports.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

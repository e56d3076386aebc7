package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/uwearuk/storefront/internal/auth"
	"github.com/uwearuk/storefront/internal/orders/app"
	"github.com/uwearuk/storefront/internal/orders/app/apperrors"
	"github.com/uwearuk/storefront/internal/orders/app/commands"
	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

const maxWebhookBodyBytes = int64(65536)

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service  *app.Service
	gateway  ports.PaymentGateway
	verifier *auth.Verifier
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, gateway ports.PaymentGateway, verifier *auth.Verifier) *Handler {
	return &Handler{service: service, gateway: gateway, verifier: verifier}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/checkout", h.requireUser(h.handleCheckout))
	mux.HandleFunc("/v1/webhooks/stripe", h.handleWebhook)
	mux.HandleFunc("/v1/orders", h.requireUser(h.handleOrders))
	mux.HandleFunc("/v1/orders/session/", h.handleOrderBySession)
	mux.HandleFunc("/v1/orders/", h.requireUser(h.handleOrderByID))
	mux.HandleFunc("/v1/admin/orders", h.requireAdmin(h.handleAdminOrders))
	mux.HandleFunc("/v1/admin/orders/move-to-sales", h.requireAdmin(h.handleMoveToSales))
	mux.HandleFunc("/v1/admin/orders/", h.requireAdmin(h.handleAdminOrderByID))
}

// requireUser authenticates the bearer token and stores the principal on
// the request context.
func (h *Handler) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	}
}

// requireAdmin additionally checks the admin capability.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := h.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		if !principal.IsAdmin {
			writeError(w, http.StatusForbidden, "not authorized as an admin")
			return
		}
		next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	}
}

func (h *Handler) authenticate(r *http.Request) (auth.Principal, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Principal{}, false
	}
	principal, err := h.verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return auth.Principal{}, false
	}
	return principal, true
}

// checkoutRequest mirrors what the storefront client sends. Prices arrive
// as decimal pounds and are converted to pence before any comparison.
type checkoutRequest struct {
	OrderItems []struct {
		Product      string `json:"product"`
		Quantity     int    `json:"quantity"`
		Size         string `json:"size"`
		SerialNumber string `json:"serialNumber"`
	} `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	CustomerDetails domain.CustomerDetails `json:"customerDetails"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	principal, _ := auth.PrincipalFrom(ctx)

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey != "" {
		if stored, err := h.service.GetIdempotentResponse(ctx, principal.UserID, idemKey); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		} else if stored != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}
	}

	var payload checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	cmd := commands.CheckoutCommand{
		UserID:                    principal.UserID,
		ShippingAddress:           payload.ShippingAddress,
		CustomerDetails:           payload.CustomerDetails,
		PaymentMethod:             payload.PaymentMethod,
		ClaimedItemsPriceCents:    domain.PoundsToCents(payload.ItemsPrice),
		ClaimedShippingPriceCents: domain.PoundsToCents(payload.ShippingPrice),
		ClaimedTotalPriceCents:    domain.PoundsToCents(payload.TotalPrice),
	}
	for _, item := range payload.OrderItems {
		cmd.Items = append(cmd.Items, commands.CheckoutItem{
			ProductID:    item.Product,
			Quantity:     item.Quantity,
			Size:         item.Size,
			SerialNumber: item.SerialNumber,
		})
	}

	result, err := h.service.Checkout(ctx, cmd)
	if err != nil {
		writeAppError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{"url": result.RedirectURL, "orderId": result.Order.ID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if idemKey != "" {
		stored := ports.StoredResponse{
			StatusCode: http.StatusCreated,
			Body:       body,
			OrderID:    result.Order.ID,
		}
		if err := h.service.SaveIdempotentResponse(ctx, principal.UserID, idemKey, stored); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

// handleWebhook verifies and applies provider payment events. Unknown
// sessions and repeated deliveries are acknowledged so the provider stops
// retrying; only persistence failures return 5xx.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := h.gateway.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "webhook signature verification failed")
		return
	}

	if event.Type == ports.EventCheckoutCompleted {
		if _, err := h.service.ConfirmPayment(r.Context(), event.SessionID); err != nil {
			writeAppError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())

	orders, err := h.service.ListUserOrders(r.Context(), principal.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) handleOrderBySession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/session/"), "/")
	if sessionID == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	order, err := h.service.GetOrderBySession(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())

	if strings.HasSuffix(trimmed, "/cancel") {
		id := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/cancel"), "/")
		id = strings.TrimSuffix(id, "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := h.service.CancelOrder(r.Context(), id, principal.UserID); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Order cancelled successfully"})
		return
	}

	id := strings.TrimSuffix(trimmed, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	order, err := h.service.GetOrder(r.Context(), id, principal.UserID, principal.IsAdmin)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page := queryInt(r, "page")
	pageSize := queryInt(r, "page_size")

	orders, err := h.service.ListAllOrders(r.Context(), page, pageSize)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) handleMoveToSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload struct {
		OrderIDs []string `json:"orderIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.service.MoveOrdersToSales(r.Context(), payload.OrderIDs)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       strconv.Itoa(result.ModifiedCount) + " orders moved to sales",
		"modifiedCount": result.ModifiedCount,
	})
}

func (h *Handler) handleAdminOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/admin/orders/"), "/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if strings.HasSuffix(trimmed, "/deliver") {
		id := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/deliver"), "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		order, err := h.service.MarkDelivered(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
		return
	}

	id := trimmed

	switch r.Method {
	case http.MethodPatch:
		var payload struct {
			IsPaid      *bool `json:"isPaid"`
			IsDelivered *bool `json:"isDelivered"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		order, err := h.service.UpdateOrder(r.Context(), id, app.UpdateOrderInput{
			IsPaid:      payload.IsPaid,
			IsDelivered: payload.IsDelivered,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	case http.MethodDelete:
		if err := h.service.DeleteOrder(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Order deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeAppError maps use-case failures onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperrors.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperrors.KindForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	case apperrors.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	case apperrors.KindUpstream:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

package payment

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"paybridge/internal/pkg/response"
	"paybridge/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type HandlerOptions struct {
	// CallbackToken, when set, must match the CallbackHeader of every webhook delivery.
	CallbackToken  string
	CallbackHeader string
}

type Handler struct {
	service *Service
	log     *zap.Logger

	callbackToken  string
	callbackHeader string
}

func NewHandler(service *Service, log *zap.Logger, opts HandlerOptions) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CallbackHeader == "" {
		opts.CallbackHeader = "x-callback-token"
	}
	validator.UseJSONFieldNames()
	return &Handler{
		service:        service,
		log:            log,
		callbackToken:  opts.CallbackToken,
		callbackHeader: opts.CallbackHeader,
	}
}

// RegisterRoutes mounts the payment endpoints. checkoutMiddleware runs only in front of
// invoice creation, the one route that costs a provider call per request.
func (h *Handler) RegisterRoutes(r gin.IRouter, checkoutMiddleware ...gin.HandlerFunc) {
	checkout := append(append([]gin.HandlerFunc{}, checkoutMiddleware...), h.CreateCheckoutSession)
	r.POST("/create-checkout-session", checkout...)
	r.GET("/verify-payment/:invoice_id", h.VerifyPayment)
	r.POST("/webhook", h.Webhook)
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Info("invalid checkout payload", zap.Error(err))
		if details := validator.FieldErrors(err); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", details)
			return
		}
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			response.Error(c, http.StatusBadRequest, "invalid request body")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	response.Data(c, http.StatusOK, CheckoutData{Attributes: CheckoutAttributes{
		CheckoutURL: res.CheckoutURL,
		InvoiceID:   res.InvoiceID,
	}})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	invoiceID := strings.TrimSpace(c.Param("invoice_id"))
	if invoiceID == "" {
		response.Error(c, http.StatusBadRequest, "invoice_id is required")
		return
	}

	res, err := h.service.VerifyPayment(c.Request.Context(), invoiceID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to verify payment")
		return
	}

	out := VerifyResponse{Status: res.Status}
	if res.Outcome == OutcomeApplied || res.Outcome == OutcomeAlreadyApplied {
		out.BookingID = res.BookingID
	}
	c.JSON(http.StatusOK, out)
}

// Webhook acknowledges every delivery it can act on or safely drop. Only a failed booking
// update answers 500 so the provider redelivers.
func (h *Handler) Webhook(c *gin.Context) {
	if h.callbackToken != "" && !h.validCallbackToken(c.GetHeader(h.callbackHeader)) {
		h.log.Warn("webhook rejected: callback token mismatch", zap.String("client_ip", c.ClientIP()))
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unreadable body")
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.log.Warn("unresolved webhook: malformed payload", zap.ByteString("raw_body", raw), zap.Error(err))
		c.JSON(http.StatusOK, WebhookResponse{Received: true, Outcome: OutcomeUnresolved})
		return
	}

	res, err := h.service.HandleWebhook(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to process webhook")
		return
	}
	if res.Outcome == OutcomeUnresolved {
		h.log.Warn("webhook payload for operator review", zap.ByteString("raw_body", raw))
	}
	c.JSON(http.StatusOK, WebhookResponse{Received: true, Outcome: res.Outcome})
}

func (h *Handler) validCallbackToken(got string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.callbackToken)) == 1
}

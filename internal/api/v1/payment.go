package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/service"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

// @Summary Process a subscription payment
// @Description Settle the current billing cycle at the oracle rate and record a receipt
// @Tags Payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 402 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/payments [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ProcessPayment(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to process payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List payment receipts
// @Description List receipts recorded for a subscription
// @Tags Payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.ListReceiptsResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/payments [get]
func (h *PaymentHandler) ListReceipts(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	items, err := h.service.ListReceipts(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to list receipts", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.ListReceiptsResponse{
		Items: items,
		Total: len(items),
	})
}

// @Summary Get a receipt by ID
// @Description Get a payment receipt by ID
// @Tags Payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /receipts/{id} [get]
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Receipt ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get receipt", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/service"
)

type OracleHandler struct {
	service service.OracleService
	log     *logger.Logger
}

func NewOracleHandler(service service.OracleService, log *logger.Logger) *OracleHandler {
	return &OracleHandler{service: service, log: log}
}

// @Summary Set the oracle price
// @Description Update the conversion rate; restricted to the oracle authority
// @Tags Oracle
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param price body dto.SetPriceRequest true "New rate"
// @Success 200 {object} dto.PriceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /oracle/price [put]
func (h *OracleHandler) SetPrice(c *gin.Context) {
	var req dto.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetPrice(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to set oracle price", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the oracle price
// @Description Get the current conversion rate
// @Tags Oracle
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.PriceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /oracle/price [get]
func (h *OracleHandler) GetPrice(c *gin.Context) {
	resp, err := h.service.GetPrice(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get oracle price", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

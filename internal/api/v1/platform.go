package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/service"
)

type PlatformHandler struct {
	service service.PlatformService
	log     *logger.Logger
}

func NewPlatformHandler(service service.PlatformService, log *logger.Logger) *PlatformHandler {
	return &PlatformHandler{service: service, log: log}
}

// @Summary Initialize the platform config
// @Description Bootstrap the platform config; the caller becomes the platform admin
// @Tags Platform
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param config body dto.InitPlatformConfigRequest true "Platform configuration"
// @Success 201 {object} dto.PlatformConfigResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /platform/config [post]
func (h *PlatformHandler) InitConfig(c *gin.Context) {
	var req dto.InitPlatformConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.InitConfig(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to initialize platform config", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get the platform config
// @Description Get the current platform config
// @Tags Platform
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.PlatformConfigResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /platform/config [get]
func (h *PlatformHandler) GetConfig(c *gin.Context) {
	resp, err := h.service.GetConfig(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get platform config", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update the platform fee wallet
// @Description Point the platform fee at a different wallet; admin only
// @Tags Platform
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param wallet body dto.UpdateFeeWalletRequest true "New fee wallet"
// @Success 200 {object} dto.PlatformConfigResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /platform/fee-wallet [put]
func (h *PlatformHandler) UpdateFeeWallet(c *gin.Context) {
	var req dto.UpdateFeeWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateFeeWallet(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to update fee wallet", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

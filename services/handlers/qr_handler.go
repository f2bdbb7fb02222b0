package handlers

import (
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/gofiber/fiber/v2"
)

type QrHandler struct {
	qrSvc QrCodeServiceInterface
}

func NewQrHandler(qrSvc QrCodeServiceInterface) *QrHandler {
	return &QrHandler{
		qrSvc: qrSvc,
	}
}

// @Summary Build QR Code
// @Description Return the cached QR image for a URL or generate and upload one
// @Tags qr
// @Accept json
// @Produce json
// @Param buildQrRequest body dto.BuildQrRequest true "QR payload"
// @Success 200 {object} shared.Response{data=dto.QrCodeResponse}
// @Router /api/v1/qr [post]
func (h *QrHandler) Build(c *fiber.Ctx) error {
	var req dto.BuildQrRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	resp, err := h.qrSvc.BuildAndCache(c.Context(), req.URL, req.Format, req.Size, currentUserID(c))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Queue QR Build
// @Description Defer generation to the async worker; returns the precomputed hash
// @Tags qr
// @Accept json
// @Produce json
// @Param buildQrRequest body dto.BuildQrRequest true "QR payload"
// @Success 202 {object} shared.Response{data=dto.QrJobAccepted}
// @Router /api/v1/qr/async [post]
func (h *QrHandler) BuildAsync(c *fiber.Ctx) error {
	var req dto.BuildQrRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewValidationError("Validation failed", dto.FormatValidationErrors(err))
	}

	resp, err := h.qrSvc.EnqueueJob(c.Context(), req.URL, req.Format, req.Size, currentUserID(c))
	if err != nil {
		return err
	}

	return shared.ResponseAccepted(c, resp)
}

// @Summary Get QR Code
// @Tags qr
// @Produce json
// @Param hash path string true "QR hash"
// @Success 200 {object} shared.Response{data=dto.QrCodeResponse}
// @Router /api/v1/qr/{hash} [get]
func (h *QrHandler) Get(c *fiber.Ctx) error {
	resp, err := h.qrSvc.Lookup(c.Context(), c.Params("hash"), currentUserID(c))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary List QR Codes
// @Tags qr
// @Produce json
// @Success 200 {object} shared.Response{data=dto.QrCodeCollectionResponse}
// @Router /api/v1/qr [get]
func (h *QrHandler) List(c *fiber.Ctx) error {
	resp, err := h.qrSvc.List(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Delete QR Code
// @Tags qr
// @Produce json
// @Param hash path string true "QR hash"
// @Success 200 {object} shared.Response
// @Router /api/v1/qr/{hash} [delete]
func (h *QrHandler) Delete(c *fiber.Ctx) error {
	if err := h.qrSvc.Delete(c.Context(), c.Params("hash"), currentUserID(c)); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

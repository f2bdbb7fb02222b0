package handlers

import (
	"github.com/biolink-hub/biolink_api/dto"
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/gofiber/fiber/v2"
)

type ContentHandler struct {
	contentSvc ContentServiceInterface
}

func NewContentHandler(contentSvc ContentServiceInterface) *ContentHandler {
	return &ContentHandler{
		contentSvc: contentSvc,
	}
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(shared.UserID).(string)
	return userID
}

// @Summary Create Link
// @Description Add a link block to the caller's page
// @Tags content
// @Accept json
// @Produce json
// @Param createLinkRequest body dto.CreateLinkRequest true "Link payload"
// @Success 201 {object} shared.Response{data=dto.LinkResponse}
// @Router /api/v1/links [post]
func (h *ContentHandler) CreateLink(c *fiber.Ctx) error {
	var req dto.CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	link, err := h.contentSvc.CreateLink(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, link)
}

// @Summary Update Link
// @Tags content
// @Accept json
// @Produce json
// @Param linkId path string true "Link ID"
// @Success 200 {object} shared.Response{data=dto.LinkResponse}
// @Router /api/v1/links/{linkId} [put]
func (h *ContentHandler) UpdateLink(c *fiber.Ctx) error {
	var req dto.UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	link, err := h.contentSvc.UpdateLink(c.Context(), currentUserID(c), c.Params("linkId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, link)
}

// @Summary Delete Link
// @Tags content
// @Produce json
// @Param linkId path string true "Link ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/links/{linkId} [delete]
func (h *ContentHandler) DeleteLink(c *fiber.Ctx) error {
	if err := h.contentSvc.DeleteLink(c.Context(), currentUserID(c), c.Params("linkId")); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary List Links
// @Tags content
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.LinkResponse}
// @Router /api/v1/links [get]
func (h *ContentHandler) ListLinks(c *fiber.Ctx) error {
	links, err := h.contentSvc.ListLinks(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, links)
}

// @Summary Link Click Count
// @Description Live click count for one of the caller's links
// @Tags analytics
// @Produce json
// @Param linkId path string true "Link ID"
// @Success 200 {object} shared.Response{data=dto.ClickCountResponse}
// @Router /api/v1/links/{linkId}/clicks [get]
func (h *ContentHandler) GetLinkClickCount(c *fiber.Ctx) error {
	count, err := h.contentSvc.GetLinkClickCount(c.Context(), currentUserID(c), c.Params("linkId"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, count)
}

// @Summary Create Section
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/sections [post]
func (h *ContentHandler) CreateSection(c *fiber.Ctx) error {
	var req dto.CreateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	section, err := h.contentSvc.CreateSection(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, section)
}

// @Summary Create Text Block
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/texts [post]
func (h *ContentHandler) CreateTextBlock(c *fiber.Ctx) error {
	var req dto.CreateTextBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	block, err := h.contentSvc.CreateTextBlock(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, block)
}

// @Summary Create Image Block
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/images [post]
func (h *ContentHandler) CreateImageBlock(c *fiber.Ctx) error {
	var req dto.CreateImageBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	block, err := h.contentSvc.CreateImageBlock(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, block)
}

// @Summary Create Video Block
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/videos [post]
func (h *ContentHandler) CreateVideoBlock(c *fiber.Ctx) error {
	var req dto.CreateVideoBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	block, err := h.contentSvc.CreateVideoBlock(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, block)
}

// @Summary Create Music Track
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/music [post]
func (h *ContentHandler) CreateMusicTrack(c *fiber.Ctx) error {
	var req dto.CreateMusicTrackRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	track, err := h.contentSvc.CreateMusicTrack(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, track)
}

// @Summary Create Social Link
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/socials [post]
func (h *ContentHandler) CreateSocialLink(c *fiber.Ctx) error {
	var req dto.CreateSocialLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	social, err := h.contentSvc.CreateSocialLink(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, social)
}

// @Summary Create Event Block
// @Tags content
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response
// @Router /api/v1/events [post]
func (h *ContentHandler) CreateEventBlock(c *fiber.Ctx) error {
	var req dto.CreateEventBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	event, err := h.contentSvc.CreateEventBlock(c.Context(), currentUserID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, event)
}

// @Summary Delete Block
// @Description Delete a block of any type owned by the caller
// @Tags content
// @Produce json
// @Param blockType path string true "Block type" Enums(link, section, text, image, video, music, social, event)
// @Param blockId path string true "Block ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/blocks/{blockType}/{blockId} [delete]
func (h *ContentHandler) DeleteBlock(c *fiber.Ctx) error {
	err := h.contentSvc.DeleteBlock(c.Context(), currentUserID(c), c.Params("blockType"), c.Params("blockId"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Reorder Blocks
// @Description Apply a batch of {id, order} pairs to one block type
// @Tags content
// @Accept json
// @Produce json
// @Param blockType path string true "Block type" Enums(link, section, text, image, video, music, social, event)
// @Param reorderRequest body dto.ReorderRequest true "Reorder batch"
// @Success 200 {object} shared.Response{data=dto.ReorderResponse}
// @Router /api/v1/blocks/{blockType}/reorder [put]
func (h *ContentHandler) Reorder(c *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewValidationError("Invalid request body", nil)
	}

	resp, err := h.contentSvc.Reorder(c.Context(), currentUserID(c), c.Params("blockType"), req.Items)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

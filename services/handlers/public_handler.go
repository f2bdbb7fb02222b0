package handlers

import (
	"github.com/biolink-hub/biolink_api/shared"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// PublicHandler serves the unauthenticated surface: profile pages and link
// click-throughs.
type PublicHandler struct {
	profileSvc ProfileServiceInterface
	viewSvc    ProfileViewRecorder
	contentSvc ContentServiceInterface
	clientIP   func(*fiber.Ctx) string
}

func NewPublicHandler(profileSvc ProfileServiceInterface, viewSvc ProfileViewRecorder, contentSvc ContentServiceInterface, clientIP func(*fiber.Ctx) string) *PublicHandler {
	return &PublicHandler{
		profileSvc: profileSvc,
		viewSvc:    viewSvc,
		contentSvc: contentSvc,
		clientIP:   clientIP,
	}
}

// @Summary Public Profile
// @Description Render-ready public page for a username; records a view event
// @Tags public
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} shared.Response{data=dto.ProfileViewResponse}
// @Router /u/{username} [get]
func (h *PublicHandler) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	profile, err := h.profileSvc.GetPublicProfile(c.Context(), username)
	if err != nil {
		return err
	}

	if err := h.viewSvc.RecordProfileView(c.Context(), username, h.clientIP(c), c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderReferer)); err != nil {
		return err
	}

	return shared.ResponseOK(c, profile)
}

// @Summary Link Click-Through
// @Description Redirect to the link target, counting the click and enqueuing the event
// @Tags public
// @Param linkId path string true "Link ID"
// @Success 302
// @Router /t/{linkId} [get]
func (h *PublicHandler) ClickThrough(c *fiber.Ctx) error {
	target, err := h.contentSvc.ResolveLinkClick(
		c.Context(),
		c.Params("linkId"),
		h.clientIP(c),
		c.Get(fiber.HeaderUserAgent),
		c.Get(fiber.HeaderReferer),
	)
	if err != nil {
		return err
	}

	log.WithField("link_id", c.Params("linkId")).Debug("Click-through redirect")
	return c.Redirect(target, fiber.StatusFound)
}

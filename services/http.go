package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/biolink-hub/biolink_api/services/handlers"
	"github.com/biolink-hub/biolink_api/shared"
)

type HttpService struct {
	appContext.DefaultService

	authSvc      *AuthService
	contentSvc   *ContentService
	profileSvc   *ProfileService
	qrSvc        *QrCodeService
	rateLimitSvc *RateLimitService

	port   int
	server *fiber.App

	authMiddleware interface {
		RequiredAuth() fiber.Handler
	}
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

// The auth middleware lives in its own package; it is resolved from the
// container by id and asserted structurally to avoid an import cycle.
const authMiddlewareSvcID = "auth"

func (svc *HttpService) Start() error {
	if m, ok := svc.Service(authMiddlewareSvcID).(interface{ RequiredAuth() fiber.Handler }); ok {
		svc.authMiddleware = m
	}

	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	svc.profileSvc = svc.Service(PROFILE_SVC).(*ProfileService)
	svc.qrSvc = svc.Service(QR_CODE_SVC).(*QrCodeService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	if svc.authMiddleware == nil {
		return errors.New("auth middleware not configured")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))
	app.Use(MonitoringMiddleware())

	authHandler := handlers.NewAuthHandler(svc.authSvc, GetClientIP)
	contentHandler := handlers.NewContentHandler(svc.contentSvc)
	qrHandler := handlers.NewQrHandler(svc.qrSvc)
	publicHandler := handlers.NewPublicHandler(svc.profileSvc, svc.profileSvc, svc.contentSvc, GetClientIP)

	app.Get("/ping", svc.ping)

	// Public surface
	app.Get("/u/:username", publicHandler.GetProfile)
	app.Get("/t/:linkId", publicHandler.ClickThrough)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Auth endpoints sit behind the fixed-window limiter.
	v1.Post("/register", svc.rateLimitSvc.Middleware(), authHandler.Register)
	v1.Post("/login", svc.rateLimitSvc.Middleware(), authHandler.Login)

	authed := v1.Group("", svc.authMiddleware.RequiredAuth())

	authed.Post("/links", contentHandler.CreateLink)
	authed.Get("/links", contentHandler.ListLinks)
	authed.Put("/links/:linkId", contentHandler.UpdateLink)
	authed.Delete("/links/:linkId", contentHandler.DeleteLink)
	authed.Get("/links/:linkId/clicks", contentHandler.GetLinkClickCount)

	authed.Post("/sections", contentHandler.CreateSection)
	authed.Post("/texts", contentHandler.CreateTextBlock)
	authed.Post("/images", contentHandler.CreateImageBlock)
	authed.Post("/videos", contentHandler.CreateVideoBlock)
	authed.Post("/music", contentHandler.CreateMusicTrack)
	authed.Post("/socials", contentHandler.CreateSocialLink)
	authed.Post("/events", contentHandler.CreateEventBlock)

	authed.Delete("/blocks/:blockType/:blockId", contentHandler.DeleteBlock)
	authed.Put("/blocks/:blockType/reorder", contentHandler.Reorder)

	authed.Post("/qr", qrHandler.Build)
	authed.Post("/qr/async", qrHandler.BuildAsync)
	authed.Get("/qr", qrHandler.List)
	authed.Get("/qr/:hash", qrHandler.Get)
	authed.Delete("/qr/:hash", qrHandler.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.Printf("HTTP server listening on :%d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}

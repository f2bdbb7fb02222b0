package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/biolink-hub/biolink_api/middleware"
	"github.com/biolink-hub/biolink_api/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.RedisService{},
		&services.PostgresService{},
		&services.MinIOService{},

		&services.JWTService{},
		&services.GeolocationService{},
		&services.MonitoringService{},

		&services.LoginThrottleService{},
		&services.RateLimitService{},
		&services.EventQueueService{},
		&services.QrCodeService{},

		&services.ProfileService{},
		&services.ContentService{},
		&services.AuthService{},

		&middleware.AuthMiddleware{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service runtime error")
		return
	}
}

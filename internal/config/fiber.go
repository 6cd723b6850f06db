package config

import (
	"FaceDetection/pkg/handlerUtil"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger, cfg AppConfig) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "Face Detection API",
			BodyLimit:             cfg.BodyLimitMB * 1024 * 1024,
			DisableKeepalive:      false,
			StrictRouting:         true,
			CaseSensitive:         true,
			EnablePrintRoutes:     cfg.Env == "development",
			DisableStartupMessage: cfg.Env == "test",
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
			ErrorHandler:          handlerUtil.New(logger).FiberErrorHandler,
		})

	return app
}

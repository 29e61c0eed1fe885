package server

import (
	"farm/internal/config"
	"farm/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Startはechoを組み立ててlistenする
func Start(addr string, cfg config.Config, authH *handler.AuthHandler, feedingH *handler.FeedingHandler) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	authH.RegisterRoutes(e)
	feedingH.RegisterRoutes(e, cfg)

	return e.Start(addr)
}

package routes

import (
	"github.com/DedS3t/richup-server/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func GameRoutes(a *fiber.App, gc *controllers.GameController) {
	a.Get("/health", gc.Health)

	route := a.Group("/game")
	route.Get("/all", gc.GetAllAvailGames)
	route.Get("/verify", gc.VerifyGame)
	route.Get("/history", gc.GetHistory)
	route.Get("/:code", gc.GetGame)
	route.Get("/:code/countries/:player", gc.GetCountryStatus)
}

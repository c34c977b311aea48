package controllers

import (
	"context"
	"errors"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/game"
	"github.com/DedS3t/richup-server/platform/relay"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const historyLimit = 20

// History lists archived games. It is optional.
type History interface {
	Recent(ctx context.Context, limit int) ([]models.GameResult, error)
}

type GameController struct {
	relay   *relay.Relay
	history History
}

func NewGameController(rel *relay.Relay, history History) *GameController {
	return &GameController{relay: rel, history: history}
}

func (gc *GameController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (gc *GameController) GetAllAvailGames(c *fiber.Ctx) error {
	games := gc.relay.OpenGames()
	if games == nil {
		games = []models.GameSummary{}
	}
	return c.JSON(games)
}

func (gc *GameController) VerifyGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"status": gc.relay.Exists(verifyGameDto.Code)})
}

func (gc *GameController) GetGame(c *fiber.Ctx) error {
	data, ok := gc.relay.Snapshot(c.Params("code"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, relay.ErrGameNotFound.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (gc *GameController) GetCountryStatus(c *fiber.Ctx) error {
	status, err := gc.relay.CountryStatus(c.Params("code"), models.PlayerID(c.Params("player")))
	switch {
	case errors.Is(err, relay.ErrGameNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(status)
}

func (gc *GameController) GetHistory(c *fiber.Ctx) error {
	if gc.history == nil {
		return c.JSON([]models.GameResult{})
	}
	results, err := gc.history.Recent(c.UserContext(), historyLimit)
	if err != nil {
		log.WithError(err).Error("load history")
		return fiber.NewError(fiber.StatusServiceUnavailable, "history unavailable")
	}
	if results == nil {
		results = []models.GameResult{}
	}
	return c.JSON(results)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

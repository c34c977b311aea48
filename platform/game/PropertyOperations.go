package game

import (
	"fmt"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/board"
)

// Rent returns the static rent of an owned tile. For utilities it returns the
// dice multiplier (4 or 10); RentDue applies the roll.
func Rent(tile *models.Tile, tiles []models.Tile) int {
	if tile.Mortgaged || !tile.IsOwned() {
		return 0
	}
	switch tile.Type {
	case models.TileStreet:
		if tile.HouseCount < len(tile.Rent) {
			return tile.Rent[tile.HouseCount]
		}
		return tile.BaseRent * (4 + 3*tile.HouseCount) / 4
	case models.TileStation:
		return 25 * countOwned(tiles, *tile.Owner, models.TileStation)
	case models.TileUtility:
		if countOwned(tiles, *tile.Owner, models.TileUtility) == 1 {
			return 4
		}
		return 10
	}
	return 0
}

// RentDue is the amount a visitor pays for landing on tile after the current roll.
func RentDue(g *models.Game, tile *models.Tile) int {
	rent := Rent(tile, g.Board)
	if tile.Type == models.TileUtility {
		rent *= g.Dice[0] + g.Dice[1]
	}
	return rent
}

// BuyProperty silently ignores owned tiles and unaffordable prices.
func (e *Engine) BuyProperty(g *models.Game, pid models.PlayerID, tileId string) {
	tile := g.TileById(tileId)
	player := g.Players[pid]
	if tile == nil || player == nil || player.IsBankrupt || !tile.Type.Purchasable() {
		return
	}
	if tile.IsOwned() || player.Cash < tile.Price {
		return
	}
	player.Cash -= tile.Price
	player.AddProperty(tile.Id)
	tile.SetOwner(pid)
	g.Log(fmt.Sprintf("%s bought %s for $%d", player.Name, tile.Name, tile.Price))
	g.CurrentTurnAction = nil
	advanceAfterAction(g)
}

// DeclineProperty answers a buy prompt with "pass".
func (e *Engine) DeclineProperty(g *models.Game, pid models.PlayerID) {
	player := g.Players[pid]
	if player == nil {
		return
	}
	name := "the property"
	if g.CurrentTurnAction != nil {
		if prompt, ok := g.CurrentTurnAction.Payload.(models.BuyPrompt); ok {
			name = prompt.TileName
		}
	}
	g.CurrentTurnAction = nil
	g.Log(fmt.Sprintf("%s declined to buy %s", player.Name, name))
	advanceAfterAction(g)
}

func (e *Engine) UpgradeHouse(g *models.Game, pid models.PlayerID, tileId string) error {
	tile := g.TileById(tileId)
	if tile == nil {
		return reject(ErrTileNotFound, "Tile not found")
	}
	if tile.Type != models.TileStreet {
		return reject(ErrNotStreet, "Can only upgrade streets")
	}
	if !tile.OwnedBy(pid) {
		return reject(ErrNotOwner, "You don't own this property")
	}
	if tile.Mortgaged {
		return reject(ErrMortgaged, "Property is mortgaged")
	}
	maxHouses := tile.MaxHouses
	if maxHouses == 0 {
		maxHouses = board.MaxHouseLevel
	}
	if tile.HouseCount >= maxHouses {
		return reject(ErrMaxLevel, "Max level reached")
	}
	if !OwnsFullCountry(g, pid, tile.Country) {
		return reject(ErrIncompleteSet, "You must own all cities in %s to build", tile.Country)
	}
	cost := tile.HouseCost
	if tile.HouseCount < len(tile.UpgradeCosts) {
		cost = tile.UpgradeCosts[tile.HouseCount]
	}
	player := g.Players[pid]
	if player.Cash < cost {
		return reject(ErrInsufficientCash, "Not enough cash ($%d needed)", cost)
	}

	player.Cash -= cost
	tile.HouseCount++
	g.Log(fmt.Sprintf("%s upgraded %s to Lv.%d ($%d)", player.Name, tile.Name, tile.HouseCount, cost))
	return nil
}

func (e *Engine) MortgageProperty(g *models.Game, pid models.PlayerID, tileId string) error {
	tile := g.TileById(tileId)
	if tile == nil {
		return reject(ErrTileNotFound, "Tile not found")
	}
	if !tile.OwnedBy(pid) {
		return reject(ErrNotOwner, "You don't own this property")
	}
	if tile.Mortgaged {
		return reject(ErrMortgaged, "Already mortgaged")
	}
	player := g.Players[pid]

	if tile.HouseCount > 0 {
		refund := tile.HouseCost * tile.HouseCount / 2
		player.Cash += refund
		g.Log(fmt.Sprintf("Removed %d houses from %s (refund $%d)", tile.HouseCount, tile.Name, refund))
		tile.HouseCount = 0
	}

	value := mortgageValue(tile)
	tile.Mortgaged = true
	player.Cash += value
	g.Log(fmt.Sprintf("%s mortgaged %s for $%d", player.Name, tile.Name, value))
	return nil
}

func (e *Engine) UnmortgageProperty(g *models.Game, pid models.PlayerID, tileId string) error {
	tile := g.TileById(tileId)
	if tile == nil {
		return reject(ErrTileNotFound, "Tile not found")
	}
	if !tile.OwnedBy(pid) {
		return reject(ErrNotOwner, "You don't own this property")
	}
	if !tile.Mortgaged {
		return reject(ErrNotMortgaged, "Not mortgaged")
	}
	cost := UnmortgageCost(tile)
	player := g.Players[pid]
	if player.Cash < cost {
		return reject(ErrInsufficientCash, "Need $%d to unmortgage", cost)
	}

	player.Cash -= cost
	tile.Mortgaged = false
	g.Log(fmt.Sprintf("%s unmortgaged %s ($%d)", player.Name, tile.Name, cost))
	return nil
}

// UnmortgageCost is the mortgage value plus 10% interest.
func UnmortgageCost(tile *models.Tile) int {
	return mortgageValue(tile) * 11 / 10
}

func mortgageValue(tile *models.Tile) int {
	if tile.MortgageValue > 0 {
		return tile.MortgageValue
	}
	return board.MortgageValue(tile.Price)
}

package board

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/DedS3t/richup-server/app/models"
)

const (
	Size          = 40
	MaxHouseLevel = 5
)

//go:embed properties.json
var propertiesJSON []byte

// rentQuarters holds the rent multiplier per house level, in quarters of the base rent.
var rentQuarters = [MaxHouseLevel + 1]int{4, 7, 10, 14, 20, 30}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Catalog is the immutable priced board. Games take a Clone of it.
type Catalog struct {
	tiles []models.Tile
}

func LoadProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := json.Unmarshal(propertiesJSON, &properties); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return properties, nil
}

func NewCatalog(properties []models.Property) (*Catalog, error) {
	if len(properties) != Size {
		return nil, fmt.Errorf("board needs %d tiles, got %d", Size, len(properties))
	}
	tiles := make([]models.Tile, 0, Size)
	for _, property := range properties {
		tiles = append(tiles, BuildTile(property))
	}
	return &Catalog{tiles: tiles}, nil
}

// Default returns the catalog built from the embedded board, computed once.
func Default() *Catalog {
	defaultOnce.Do(func() {
		properties, err := LoadProperties()
		if err != nil {
			panic(err)
		}
		defaultCatalog, err = NewCatalog(properties)
		if err != nil {
			panic(err)
		}
	})
	return defaultCatalog
}

// Clone returns a fresh mutable board for one game.
func (c *Catalog) Clone() []models.Tile {
	board := make([]models.Tile, len(c.tiles))
	for i, tile := range c.tiles {
		board[i] = tile.Clone()
		board[i].Release()
	}
	return board
}

func (c *Catalog) Len() int { return len(c.tiles) }

// BuildTile derives the pricing tables for one template record.
func BuildTile(p models.Property) models.Tile {
	tile := models.Tile{
		Id:      p.Id,
		Name:    p.Name,
		Type:    p.Type,
		Price:   p.Price,
		Country: p.Country,
		Flag:    p.Flag,
		Color:   p.Color,
	}
	switch p.Type {
	case models.TileStreet:
		tile.BaseRent = BaseRent(p.Price)
		tile.Rent = RentTable(p.Price)
		tile.HouseCost = p.Price / 2
		tile.UpgradeCosts = UpgradeCosts(p.Price)
		tile.MortgageValue = MortgageValue(p.Price)
		tile.MaxHouses = MaxHouseLevel
	case models.TileStation, models.TileUtility:
		tile.MortgageValue = MortgageValue(p.Price)
	}
	return tile
}

func BaseRent(price int) int { return price / 10 }

// RentTable is the rent per house level 0..5; level 5 is the hotel.
func RentTable(price int) []int {
	base := BaseRent(price)
	rent := make([]int, MaxHouseLevel+1)
	for level, q := range rentQuarters {
		rent[level] = base * q / 4
	}
	return rent
}

// UpgradeCosts is indexed by the current level: UpgradeCosts[n] buys level n+1.
func UpgradeCosts(price int) []int {
	half := price / 2
	threeQuarters := price * 3 / 4
	return []int{half, half, threeQuarters, threeQuarters, price}
}

func MortgageValue(price int) int { return price / 2 }

// Countries lists the street ids of every country group, in board order.
func Countries(tiles []models.Tile) map[string][]string {
	groups := make(map[string][]string)
	for _, tile := range tiles {
		if tile.Country != "" {
			groups[tile.Country] = append(groups[tile.Country], tile.Id)
		}
	}
	return groups
}

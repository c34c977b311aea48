package models

type TileKind string

const (
	TileStart   TileKind = "start"
	TileStreet  TileKind = "street"
	TileChest   TileKind = "chest"
	TileTax     TileKind = "tax"
	TileStation TileKind = "station"
	TileChance  TileKind = "chance"
	TileJail    TileKind = "jail"
	TileUtility TileKind = "utility"
	TileParking TileKind = "parking"
	TilePolice  TileKind = "police"
)

// Purchasable reports whether tiles of this kind can be bought and charge rent.
func (k TileKind) Purchasable() bool {
	return k == TileStreet || k == TileStation || k == TileUtility
}

// Property is one template record of the board catalog, as read from properties.json.
type Property struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Type    TileKind `json:"type"`
	Price   int      `json:"price,omitempty"`
	Country string   `json:"country,omitempty"`
	Flag    string   `json:"flag,omitempty"`
	Color   string   `json:"color,omitempty"`
}

// Tile is a board square. Pricing fields are static; Owner, HouseCount and
// Mortgaged are per-game state.
type Tile struct {
	Id            string   `json:"id"`
	Name          string   `json:"name"`
	Type          TileKind `json:"type"`
	Price         int      `json:"price,omitempty"`
	BaseRent      int      `json:"baseRent,omitempty"`
	Rent          []int    `json:"rent,omitempty"`
	HouseCost     int      `json:"houseCost,omitempty"`
	UpgradeCosts  []int    `json:"upgradeCosts,omitempty"`
	MortgageValue int      `json:"mortgageValue,omitempty"`
	MaxHouses     int      `json:"maxHouses,omitempty"`
	Country       string   `json:"country,omitempty"`
	Flag          string   `json:"flag,omitempty"`
	Color         string   `json:"color,omitempty"`

	// Owner is nil while the bank holds the tile.
	Owner      *PlayerID `json:"owner,omitempty"`
	HouseCount int       `json:"houseCount"`
	Mortgaged  bool      `json:"mortgaged"`
}

func (t *Tile) IsOwned() bool { return t.Owner != nil }

func (t *Tile) OwnedBy(pid PlayerID) bool { return t.Owner != nil && *t.Owner == pid }

func (t *Tile) SetOwner(pid PlayerID) {
	owner := pid
	t.Owner = &owner
}

// Release returns the tile to the bank with no houses and no mortgage.
func (t *Tile) Release() {
	t.Owner = nil
	t.HouseCount = 0
	t.Mortgaged = false
}

// Clone copies the tile, including its slices, so per-game mutation never
// touches the catalog.
func (t Tile) Clone() Tile {
	c := t
	if t.Rent != nil {
		c.Rent = append([]int(nil), t.Rent...)
	}
	if t.UpgradeCosts != nil {
		c.UpgradeCosts = append([]int(nil), t.UpgradeCosts...)
	}
	if t.Owner != nil {
		c.SetOwner(*t.Owner)
	}
	return c
}

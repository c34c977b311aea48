package models

type PlayerID string

type Player struct {
	Id         PlayerID `json:"id"`
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	Cash       int      `json:"cash"`
	Position   int      `json:"position"`
	JailTurns  int      `json:"jailTurns"`
	IsBankrupt bool     `json:"isBankrupt"`
	Properties []string `json:"properties"`
}

// PlayerColors is the fixed palette handed out by join order.
var PlayerColors = []string{"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#00FFFF", "#FF00FF", "#FFA500", "#800080"}

func (p *Player) Owns(tileId string) bool {
	for _, id := range p.Properties {
		if id == tileId {
			return true
		}
	}
	return false
}

func (p *Player) AddProperty(tileId string) {
	if !p.Owns(tileId) {
		p.Properties = append(p.Properties, tileId)
	}
}

func (p *Player) RemoveProperty(tileId string) {
	kept := p.Properties[:0]
	for _, id := range p.Properties {
		if id != tileId {
			kept = append(kept, id)
		}
	}
	p.Properties = kept
}

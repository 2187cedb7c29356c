package match

import "github.com/ringsidegames/ringd/internal/game/combat"

// FighterSnapshot is the wire view of one fighter at a tick.
type FighterSnapshot struct {
	Index         int     `json:"index"`
	Character     string  `json:"character"`
	State         string  `json:"state"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	VelX          float64 `json:"velX"`
	VelY          float64 `json:"velY"`
	FacingRight   bool    `json:"facingRight"`
	Health        int     `json:"health"`
	MaxHealth     int     `json:"maxHealth"`
	SpecialMeter  int     `json:"specialMeter"`
	PressureMeter int     `json:"pressureMeter"`
	ActiveAttack  string  `json:"activeAttack,omitempty"`
}

// Snapshot is the authoritative match state published to observers at the
// snapshot cadence and on match end.
type Snapshot struct {
	MatchID  string             `json:"matchId"`
	Tick     int                `json:"tick"`
	Fighters [2]FighterSnapshot `json:"fighters"`
	Over     bool               `json:"over"`
	// Winner is the index of the winning fighter, or -1 while the match is
	// running and on a draw.
	Winner int `json:"winner"`
}

func snapshotFighter(f *combat.Fighter) FighterSnapshot {
	s := FighterSnapshot{
		Index:         f.Index,
		Character:     f.Char.ID,
		State:         string(f.State),
		X:             f.Pos.X,
		Y:             f.Pos.Y,
		VelX:          f.Vel.X,
		VelY:          f.Vel.Y,
		FacingRight:   f.FacingRight,
		Health:        f.Health,
		MaxHealth:     f.MaxHealth,
		SpecialMeter:  f.SpecialMeter,
		PressureMeter: f.PressureMeter,
	}
	if f.ActiveAttack != nil {
		s.ActiveAttack = f.ActiveAttack.ID
	}
	return s
}

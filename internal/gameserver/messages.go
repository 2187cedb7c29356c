package gameserver

import (
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/match"
)

// Message type tags for the WebSocket protocol. Every frame is a JSON
// envelope carrying exactly the fields its type needs.
const (
	TypeJoin     = "join"
	TypeIntent   = "intent"
	TypeJoined   = "joined"
	TypeSnapshot = "snapshot"
	TypeEvents   = "events"
	TypeResult   = "result"
	TypeError    = "error"
)

// ClientMessage is a frame received from a client. Unknown types and
// malformed frames are dropped; the simulation never trusts client input.
type ClientMessage struct {
	Type string `json:"type"`

	// Join fields.
	PlayerName string `json:"playerName,omitempty"`
	Character  string `json:"character,omitempty"`
	Opponent   string `json:"opponent,omitempty"`
	Level      int    `json:"level,omitempty"`

	// Intent fields.
	Tick    int    `json:"tick,omitempty"`
	MoveX   int    `json:"moveX,omitempty"`
	Jump    bool   `json:"jump,omitempty"`
	Block   bool   `json:"block,omitempty"`
	Guard   string `json:"guard,omitempty"`
	Command string `json:"command,omitempty"`
}

// Intent converts the frame's intent fields to a simulation intent.
func (m *ClientMessage) Intent() combat.Intent {
	return combat.Intent{
		MoveX:   m.MoveX,
		Jump:    m.Jump,
		Block:   m.Block,
		Guard:   character.Zone(m.Guard),
		Command: character.Command(m.Command),
	}
}

// TransitionMessage is the wire form of a state transition.
type TransitionMessage struct {
	Fighter        int    `json:"fighter"`
	From           string `json:"from"`
	To             string `json:"to"`
	Attack         string `json:"attack,omitempty"`
	TelegraphFrame string `json:"telegraphFrame,omitempty"`
}

// HitMessage is the wire form of a landed or blocked hit.
type HitMessage struct {
	Attacker int    `json:"attacker"`
	Defender int    `json:"defender"`
	Attack   string `json:"attack"`
	Damage   int    `json:"damage"`
	Zone     string `json:"zone"`
	Blocked  bool   `json:"blocked"`
	Special  bool   `json:"special"`
}

// ServerMessage is a frame sent to a client.
type ServerMessage struct {
	Type string `json:"type"`

	// Joined fields.
	MatchID          string `json:"matchId,omitempty"`
	PlayerIndex      int    `json:"playerIndex"`
	TickRate         int    `json:"tickRate,omitempty"`
	SnapshotInterval int    `json:"snapshotInterval,omitempty"`
	OpponentID       string `json:"opponentId,omitempty"`

	// Snapshot frame.
	Snapshot *match.Snapshot `json:"snapshot,omitempty"`

	// Event frames.
	Tick        int                 `json:"tick,omitempty"`
	Transitions []TransitionMessage `json:"transitions,omitempty"`
	Hits        []HitMessage        `json:"hits,omitempty"`

	// Result fields. Winner is a fighter index, so zero is meaningful and
	// never omitted.
	Winner       int  `json:"winner"`
	YouWon       bool `json:"youWon,omitempty"`
	Rank         int  `json:"rank,omitempty"`
	Score        int  `json:"score,omitempty"`
	NewHighScore bool `json:"newHighScore,omitempty"`

	// Error detail.
	Error string `json:"error,omitempty"`
}

func transitionMessages(events []combat.TransitionEvent) []TransitionMessage {
	if len(events) == 0 {
		return nil
	}
	out := make([]TransitionMessage, 0, len(events))
	for _, ev := range events {
		out = append(out, TransitionMessage{
			Fighter:        ev.Fighter,
			From:           string(ev.From),
			To:             string(ev.To),
			Attack:         ev.Attack,
			TelegraphFrame: ev.TelegraphFrame,
		})
	}
	return out
}

func hitMessages(hits []combat.HitEvent) []HitMessage {
	if len(hits) == 0 {
		return nil
	}
	out := make([]HitMessage, 0, len(hits))
	for _, hit := range hits {
		out = append(out, HitMessage{
			Attacker: hit.Attacker,
			Defender: hit.Defender,
			Attack:   hit.Attack,
			Damage:   hit.Damage,
			Zone:     string(hit.Zone),
			Blocked:  hit.Blocked,
			Special:  hit.Special,
		})
	}
	return out
}

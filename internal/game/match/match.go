package match

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ringsidegames/ringd/internal/game/ai"
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
)

// Config carries the per-match tuning the server passes in.
type Config struct {
	// SnapshotInterval is the tick cadence of full-state snapshots. Values
	// below 1 snapshot every tick.
	SnapshotInterval int
	// MaxTicks caps match length; 0 means uncapped. A capped match that
	// reaches the limit ends with the healthier fighter winning.
	MaxTicks int
}

// TickResult is everything one tick produced.
type TickResult struct {
	Tick        int
	Transitions []combat.TransitionEvent
	Hits        []combat.HitEvent
	// Snapshot is non-nil on snapshot ticks and on the ending tick.
	Snapshot *Snapshot
	Over     bool
	// Winner is the winning fighter index once Over, -1 otherwise and on a
	// double knockout or time-limit tie.
	Winner int
}

// Match owns one fight. All mutation happens inside Tick; callers drive it
// from a single goroutine.
type Match struct {
	ID uuid.UUID

	fighters    [2]*combat.Fighter
	controllers [2]Controller
	cfg         Config

	tick         int
	prevDistance float64
	damageDealt  [2]int
	over         bool
	winner       int
}

// New assembles a match from two fighters and their controllers.
//
// Precondition: fighters carry indexes 0 and 1 in order; controllers are
// non-nil.
// Postcondition: the match is at tick 0 and not over.
func New(fighters [2]*combat.Fighter, controllers [2]Controller, cfg Config) (*Match, error) {
	for i := range fighters {
		if fighters[i] == nil {
			return nil, fmt.Errorf("match: fighter %d is nil", i)
		}
		if fighters[i].Index != i {
			return nil, fmt.Errorf("match: fighter at slot %d has index %d", i, fighters[i].Index)
		}
		if controllers[i] == nil {
			return nil, fmt.Errorf("match: controller %d is nil", i)
		}
	}
	if cfg.SnapshotInterval < 1 {
		cfg.SnapshotInterval = 1
	}
	m := &Match{
		ID:          uuid.New(),
		fighters:    fighters,
		controllers: controllers,
		cfg:         cfg,
		winner:      -1,
	}
	m.prevDistance = m.distance()
	return m, nil
}

// Fighter returns the fighter at index i.
func (m *Match) Fighter(i int) *combat.Fighter { return m.fighters[i] }

// Tick runs the match's current tick and advances the clock.
//
// Per-tick order: observe → intents → facing → advance both machines in
// index order → detect hits both directions → apply hits in index order →
// end-of-match check. Calling Tick on a finished match is a no-op that
// reports the final result.
func (m *Match) Tick() TickResult {
	if m.over {
		return TickResult{Tick: m.tick, Over: true, Winner: m.winner, Snapshot: m.snapshot()}
	}

	res := TickResult{Tick: m.tick, Winner: -1}

	distance := m.distance()
	closing := distance < m.prevDistance
	m.prevDistance = distance

	var intents [2]combat.Intent
	for i := range m.fighters {
		intents[i] = m.controllers[i].Intent(m.observe(i, distance, closing))
	}

	// Fighters turn toward the opponent only while free to act; a committed
	// attack keeps its facing.
	for i, f := range m.fighters {
		if f.State.Actionable() {
			f.FaceToward(m.fighters[1-i].Pos.X)
		}
	}

	for i, f := range m.fighters {
		res.Transitions = append(res.Transitions, f.Advance(intents[i], distance)...)
	}

	var hits []combat.HitEvent
	for i := range m.fighters {
		if hit, ok := combat.DetectHit(m.fighters[i], m.fighters[1-i]); ok {
			hits = append(hits, hit)
		}
	}
	// Apply in attacker index order, so fighter 0's hit lands first;
	// this is the same-tick interrupt tie-break.
	for _, hit := range hits {
		var pressureCharge, specialCharge int
		if attack, ok := m.fighters[hit.Attacker].Char.AttackByID(hit.Attack); ok {
			pressureCharge = attack.PressureCharge
			specialCharge = attack.SpecialCharge
		}
		res.Transitions = append(res.Transitions,
			m.fighters[hit.Defender].ApplyHit(hit, pressureCharge)...)
		m.fighters[hit.Attacker].SpecialMeter += specialCharge
		m.damageDealt[hit.Attacker] += hit.Damage
	}
	res.Hits = hits

	m.tick++
	m.checkEnd()

	res.Over = m.over
	res.Winner = m.winner
	if m.over || m.tick%m.cfg.SnapshotInterval == 0 {
		res.Snapshot = m.snapshot()
	}
	return res
}

// Over reports whether the match has ended.
func (m *Match) Over() bool { return m.over }

// Winner returns the winning fighter index, or -1 before the end and on a
// draw.
func (m *Match) Winner() int { return m.winner }

// CurrentTick returns the next tick number Tick will run.
func (m *Match) CurrentTick() int { return m.tick }

// DamageDealt returns the total damage fighter i has dealt, chip included.
func (m *Match) DamageDealt(i int) int { return m.damageDealt[i] }

func (m *Match) distance() float64 {
	return m.fighters[0].Pos.Dist(m.fighters[1].Pos)
}

func (m *Match) observe(i int, distance float64, closing bool) ai.Observation {
	self := m.fighters[i]
	ready := make(map[character.Command]bool, 3)
	for _, cmd := range []character.Command{character.CommandLight, character.CommandHeavy, character.CommandBurst} {
		ready[cmd] = self.CommandReady(cmd)
	}
	return ai.Observation{
		Tick:     m.tick,
		Self:     ai.NewFighterView(self),
		Opponent: ai.NewFighterView(m.fighters[1-i]),
		Distance: distance,
		Closing:  closing,
		Ready:    ready,
	}
}

func (m *Match) checkEnd() {
	dead0 := m.fighters[0].State == combat.StateDead
	dead1 := m.fighters[1].State == combat.StateDead
	switch {
	case dead0 && dead1:
		m.over, m.winner = true, -1
	case dead0:
		m.over, m.winner = true, 1
	case dead1:
		m.over, m.winner = true, 0
	case m.cfg.MaxTicks > 0 && m.tick >= m.cfg.MaxTicks:
		m.over = true
		switch {
		case m.fighters[0].Health > m.fighters[1].Health:
			m.winner = 0
		case m.fighters[1].Health > m.fighters[0].Health:
			m.winner = 1
		default:
			m.winner = -1
		}
	}
}

func (m *Match) snapshot() *Snapshot {
	return &Snapshot{
		MatchID: m.ID.String(),
		Tick:    m.tick,
		Fighters: [2]FighterSnapshot{
			snapshotFighter(m.fighters[0]),
			snapshotFighter(m.fighters[1]),
		},
		Over:   m.over,
		Winner: m.winner,
	}
}

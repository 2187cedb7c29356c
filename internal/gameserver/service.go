// Package gameserver exposes the combat simulation over WebSocket: clients
// join a match against an AI opponent, stream per-tick intents in, and
// receive snapshots and combat events out. The server is authoritative;
// malformed or late client input is dropped, never an error.
package gameserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/game/combat"
	"github.com/ringsidegames/ringd/internal/game/geom"
	"github.com/ringsidegames/ringd/internal/game/match"
	"github.com/ringsidegames/ringd/internal/game/rng"
)

const (
	joinTimeout  = 10 * time.Second
	writeTimeout = time.Second
)

// ScoreSubmitter records a finished match on the leaderboard.
//
// Postcondition: returns the player's rank (1-based), the computed score,
// and whether it is a new personal best.
type ScoreSubmitter interface {
	SubmitScore(ctx context.Context, player string, level, damageDealt int) (rank, score int, newHigh bool, err error)
}

// ServiceConfig carries the simulation parameters the service applies to
// every match it hosts.
type ServiceConfig struct {
	// TickRate is ticks per second, reported to clients so they can pace
	// intent submission.
	TickRate int
	// SnapshotInterval is the tick cadence of full-state snapshots.
	SnapshotInterval int
	// MaxTicks caps match length; 0 means uncapped.
	MaxTicks int
	// SpawnGap is the initial distance between the fighters.
	SpawnGap float64
}

// Service is the WebSocket match host. One connection is one match: the
// client is always fighter 0, the AI opponent fighter 1.
type Service struct {
	registry *character.Registry
	ticks    *MatchTickManager
	scores   ScoreSubmitter
	cfg      ServiceConfig
	logger   *zap.Logger
}

// NewService creates a Service.
//
// Precondition: registry, ticks, and logger must be non-nil. scores may be
// nil; match results are then not persisted.
func NewService(registry *character.Registry, ticks *MatchTickManager, scores ScoreSubmitter, cfg ServiceConfig, logger *zap.Logger) *Service {
	if registry == nil || ticks == nil || logger == nil {
		panic("gameserver.NewService: registry, ticks, and logger must be non-nil")
	}
	if cfg.SnapshotInterval < 1 {
		cfg.SnapshotInterval = 1
	}
	if cfg.SpawnGap <= 0 {
		cfg.SpawnGap = 200
	}
	return &Service{
		registry: registry,
		ticks:    ticks,
		scores:   scores,
		cfg:      cfg,
		logger:   logger,
	}
}

// ServeHTTP upgrades the request to a WebSocket session and runs one match
// to completion.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	if err := s.session(r.Context(), conn); err != nil {
		s.logger.Info("session ended with error", zap.Error(err))
		// Best effort: the close reason is truncated at 125 bytes, so the
		// rejection detail goes out as a frame of its own first.
		_ = s.write(r.Context(), conn, ServerMessage{Type: TypeError, Error: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// session runs the join handshake and then the match until it ends or the
// client disconnects.
func (s *Service) session(ctx context.Context, conn *websocket.Conn) error {
	join, err := s.readJoin(ctx, conn)
	if err != nil {
		return err
	}

	player, ok := s.registry.ByID(join.Character)
	if !ok {
		return fmt.Errorf("unknown character %q", join.Character)
	}
	opponentID := join.Opponent
	if opponentID == "" {
		opponentID = join.Character
	}
	opponent, ok := s.registry.ByID(opponentID)
	if !ok {
		return fmt.Errorf("unknown opponent %q", opponentID)
	}
	level := join.Level
	if level < 1 {
		level = 1
	}

	human := match.NewHumanController()
	m, err := s.newMatch(player, opponent, human)
	if err != nil {
		return fmt.Errorf("assembling match: %w", err)
	}

	logger := s.logger.With(
		zap.String("match_id", m.ID.String()),
		zap.String("player", join.PlayerName),
		zap.String("character", player.ID),
		zap.String("opponent", opponent.ID),
	)
	logger.Info("match starting", zap.Int("level", level))

	if err := s.write(ctx, conn, ServerMessage{
		Type:             TypeJoined,
		MatchID:          m.ID.String(),
		PlayerIndex:      0,
		TickRate:         s.cfg.TickRate,
		SnapshotInterval: s.cfg.SnapshotInterval,
		OpponentID:       opponent.ID,
	}); err != nil {
		return fmt.Errorf("sending joined frame: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.readIntents(sessionCtx, conn, human, cancel)

	done := make(chan match.TickResult, 1)
	// The callback runs on the tick manager's goroutine; the flag keeps a
	// finished match from re-reporting while unregistration is in flight.
	finished := false
	s.ticks.RegisterTick(m.ID.String(), func() {
		if finished {
			return
		}
		res := m.Tick()
		if err := s.publish(sessionCtx, conn, res); err != nil {
			cancel()
			return
		}
		if res.Over {
			finished = true
			done <- res
		}
	})
	defer s.ticks.Unregister(m.ID.String())

	select {
	case <-sessionCtx.Done():
		logger.Info("client left mid-match", zap.Int("tick", m.CurrentTick()))
		return nil
	case res := <-done:
		return s.finish(ctx, conn, logger, m, join, level, res)
	}
}

func (s *Service) readJoin(ctx context.Context, conn *websocket.Conn) (ClientMessage, error) {
	joinCtx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()

	var msg ClientMessage
	if err := wsjson.Read(joinCtx, conn, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("reading join frame: %w", err)
	}
	if msg.Type != TypeJoin {
		return ClientMessage{}, fmt.Errorf("first frame must be %q, got %q", TypeJoin, msg.Type)
	}
	if msg.PlayerName == "" {
		return ClientMessage{}, fmt.Errorf("join frame missing playerName")
	}
	return msg, nil
}

func (s *Service) newMatch(player, opponent *character.Character, human *match.HumanController) (*match.Match, error) {
	half := s.cfg.SpawnGap / 2
	f0, err := combat.NewFighter(0, player, defaultLoadout(player), geom.Vec{X: -half}, player.MaxHealth)
	if err != nil {
		return nil, err
	}
	f1, err := combat.NewFighter(1, opponent, defaultLoadout(opponent), geom.Vec{X: half}, opponent.MaxHealth)
	if err != nil {
		return nil, err
	}
	f1.FacingRight = false

	ai := match.NewAIController(opponent, rng.NewCryptoSource())
	return match.New(
		[2]*combat.Fighter{f0, f1},
		[2]match.Controller{human, ai},
		match.Config{SnapshotInterval: s.cfg.SnapshotInterval, MaxTicks: s.cfg.MaxTicks},
	)
}

// readIntents pumps client frames into the human controller until the
// connection drops or the session ends. Non-intent frames are ignored.
func (s *Service) readIntents(ctx context.Context, conn *websocket.Conn, human *match.HumanController, cancel context.CancelFunc) {
	defer cancel()
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		if msg.Type != TypeIntent {
			continue
		}
		human.SubmitIntent(msg.Tick, msg.Intent())
	}
}

// publish sends one tick's events and snapshot to the client.
func (s *Service) publish(ctx context.Context, conn *websocket.Conn, res match.TickResult) error {
	if len(res.Transitions) > 0 || len(res.Hits) > 0 {
		err := s.write(ctx, conn, ServerMessage{
			Type:        TypeEvents,
			Tick:        res.Tick,
			Transitions: transitionMessages(res.Transitions),
			Hits:        hitMessages(res.Hits),
		})
		if err != nil {
			return err
		}
	}
	if res.Snapshot != nil {
		return s.write(ctx, conn, ServerMessage{Type: TypeSnapshot, Snapshot: res.Snapshot})
	}
	return nil
}

// finish submits the player's result to the leaderboard and sends the
// closing result frame.
func (s *Service) finish(ctx context.Context, conn *websocket.Conn, logger *zap.Logger, m *match.Match, join ClientMessage, level int, res match.TickResult) error {
	result := ServerMessage{
		Type:   TypeResult,
		Winner: res.Winner,
		YouWon: res.Winner == 0,
	}

	if s.scores != nil {
		rank, score, newHigh, err := s.scores.SubmitScore(ctx, join.PlayerName, level, m.DamageDealt(0))
		if err != nil {
			logger.Error("submitting score", zap.Error(err))
		} else {
			result.Rank = rank
			result.Score = score
			result.NewHighScore = newHigh
		}
	}

	logger.Info("match finished",
		zap.Int("winner", res.Winner),
		zap.Int("ticks", m.CurrentTick()),
		zap.Int("damage_dealt", m.DamageDealt(0)),
		zap.Int("rank", result.Rank),
	)
	return s.write(ctx, conn, result)
}

func (s *Service) write(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}

// defaultLoadout returns the loadout of the character's first catalog
// attack. Characters in this game define one loadout each.
func defaultLoadout(ch *character.Character) character.Loadout {
	return ch.Attacks[0].Loadout
}

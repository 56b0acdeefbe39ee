// pkg/engine/session.go
package engine

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/event"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

var (
	hudColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	buttonColor = color.RGBA{R: 255, G: 215, B: 0, A: 255}
)

// Session owns one game: the anchor, the live bodies, the weapon and the
// economy. Step and Run must be called from a single goroutine; Snapshot
// and LastTickAt are safe to call from anywhere.
type Session struct {
	Config   *config.GameConfig
	EventBus *event.Bus
	Targeter Targeter

	anchor  *entity.Anchor
	bodies  []*entity.Body
	weapon  *entity.Weapon
	economy *entity.Economy
	tuning  entity.BodyTuning
	upgrade physics.Rect

	rng    *rand.Rand
	ids    entity.IDSource
	logger *logging.Logger
	logCtx context.Context

	state     State
	tick      uint64
	stats     Stats
	startedAt time.Time

	snapshot   atomic.Pointer[GameState]
	lastTickAt atomic.Int64
	running    atomic.Bool
}

// NewSession creates a session in the Running state. The random source
// drives spawning and must not be shared with other goroutines.
func NewSession(cfg *config.GameConfig, rng *rand.Rand, bus *event.Bus, logger *logging.Logger) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("failed to create session: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, logging.WrapError(err, "failed to create session")
	}
	if rng == nil {
		return nil, fmt.Errorf("failed to create session: nil random source")
	}
	if bus == nil {
		bus = event.NewEventBus()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	beamColor, err := entity.ParseHexColor(cfg.Weapon.BeamColor)
	if err != nil {
		return nil, logging.WrapError(err, "failed to create session")
	}

	s := &Session{
		Config:   cfg,
		EventBus: bus,
		Targeter: AllBodies{},
		rng:      rng,
		logger:   logger,
		logCtx:   logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID()),
		state:    StateRunning,
		tuning:   tuningFromConfig(cfg),
		upgrade: physics.RectFromCorner(
			cfg.Controls.UpgradeButton.X, cfg.Controls.UpgradeButton.Y,
			cfg.Controls.UpgradeButton.Width, cfg.Controls.UpgradeButton.Height),
	}

	s.anchor = entity.NewAnchor(s.ids.Next(), physics.Vector2D{X: cfg.Anchor.X, Y: cfg.Anchor.Y}, cfg.Anchor.Radius)
	s.economy = entity.NewEconomy(cfg.Economy.StartingBalance)
	s.weapon = entity.NewWeapon(cfg.Weapon.InitialPower, cfg.Weapon.InitialUpgradeCost, s.economy)
	s.weapon.BeamColor = beamColor
	s.weapon.BeamWidth = cfg.Weapon.BeamWidth

	s.startedAt = time.Now()
	s.lastTickAt.Store(s.startedAt.UnixNano())
	s.running.Store(true)
	s.snapshot.Store(s.buildSnapshot())

	s.EventBus.Publish(&event.BaseEvent{EventType: event.GameStarted, Source: s})
	s.logger.Info(s.logCtx, "session started",
		"anchor_x", cfg.Anchor.X,
		"anchor_y", cfg.Anchor.Y,
		"axis_reference", s.tuning.AxisReference.String(),
		"spawn_odds", cfg.Bodies.SpawnOdds,
	)

	return s, nil
}

func tuningFromConfig(cfg *config.GameConfig) entity.BodyTuning {
	axis := physics.AxisLegacy
	if cfg.Physics.CorrectAxisReference {
		axis = physics.AxisCorrected
	}
	return entity.BodyTuning{
		Acceleration:         cfg.Physics.Acceleration,
		FiringRadius:         cfg.Physics.FiringRadius,
		DestructionThreshold: cfg.Bodies.DestructionThreshold,
		MaxMass:              cfg.Bodies.MaxMass,
		MaxDisplay:           cfg.Bodies.MaxDisplay,
		MinDisplay:           cfg.Bodies.MinDisplay,
		AxisReference:        axis,
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// CurrentTick returns the number of completed ticks
func (s *Session) CurrentTick() uint64 {
	return s.tick
}

// Anchor returns the planet being defended
func (s *Session) Anchor() *entity.Anchor {
	return s.anchor
}

// Bodies returns the live bodies. The slice must not be modified.
func (s *Session) Bodies() []*entity.Body {
	return s.bodies
}

// Weapon returns the session's laser
func (s *Session) Weapon() *entity.Weapon {
	return s.weapon
}

// Economy returns the session's bank
func (s *Session) Economy() *entity.Economy {
	return s.economy
}

// UpgradeControl returns the clickable upgrade area in world coordinates
func (s *Session) UpgradeControl() physics.Rect {
	return s.upgrade
}

// Stats returns a copy of the running statistics
func (s *Session) Stats() Stats {
	return s.stats
}

// Snapshot returns the state captured at the end of the last tick
func (s *Session) Snapshot() *GameState {
	return s.snapshot.Load()
}

// LastTickAt returns when the last tick completed
func (s *Session) LastTickAt() time.Time {
	return time.Unix(0, s.lastTickAt.Load())
}

// IsRunning reports whether the session is still Running. Safe for
// concurrent use.
func (s *Session) IsRunning() bool {
	return s.running.Load()
}

// Spawn adds a body of the given starting mass on the firing circle
func (s *Session) Spawn(startingMass int) *entity.Body {
	body := entity.SpawnBody(s.ids.Next(), startingMass, s.anchor, s.tuning, s.rng)
	s.bodies = append(s.bodies, body)
	s.stats.Spawned++

	s.EventBus.Publish(event.NewBodyEvent(event.BodySpawned, s,
		uint64(body.ID), body.Mass(), body.StartingMass(), body.Position))
	s.logger.Debug(s.logCtx, "body spawned",
		"body_id", uint64(body.ID),
		"mass", startingMass,
		"x", body.Position.X,
		"y", body.Position.Y,
	)
	return body
}

// Step runs one tick against p and returns the resulting state. Once the
// session is Terminated, Step does nothing.
func (s *Session) Step(p Presenter) State {
	if s.state == StateTerminated {
		return s.state
	}

	if s.handleInput(p.PollEvents()) {
		s.terminate(ReasonQuit)
		return s.state
	}

	s.spawnBodies()

	for _, body := range s.bodies {
		body.Tick(s.anchor)
	}

	targets := s.Targeter.Targets(s.anchor, s.bodies)
	for _, body := range targets {
		s.weapon.Damage(body)
	}

	s.removeDeadBodies()

	hit := s.checkAnchorCollision()

	s.draw(p, targets)
	p.Present()

	s.tick++
	s.stats.Ticks = s.tick
	s.lastTickAt.Store(time.Now().UnixNano())
	snap := s.buildSnapshot()
	s.snapshot.Store(snap)
	s.EventBus.Publish(event.NewTickEvent(s, s.tick, snap))

	if hit {
		s.terminate(ReasonAnchorDestroyed)
	}
	return s.state
}

// Run steps the session until it terminates, ctx is cancelled or the
// configured tick limit is reached. p.Tick paces the loop; slow ticks are
// not made up.
func (s *Session) Run(ctx context.Context, p Presenter) error {
	maxTicks := s.Config.Loop.MaxTicks
	for s.state == StateRunning {
		select {
		case <-ctx.Done():
			s.terminate(ReasonCancelled)
			return ctx.Err()
		default:
		}

		if s.Step(p) == StateTerminated {
			break
		}
		if maxTicks > 0 && s.tick >= maxTicks {
			s.terminate(ReasonTickLimit)
			break
		}
		p.Tick(s.Config.Loop.FrameRate)
	}
	return nil
}

// Terminate ends a running session with the given reason
func (s *Session) Terminate(reason string) {
	s.terminate(reason)
}

// handleInput applies the polled events and reports whether a quit was seen
func (s *Session) handleInput(events []InputEvent) bool {
	for _, ev := range events {
		switch ev.Kind {
		case InputQuit:
			return true
		case InputPointerDown:
			if s.upgrade.Contains(ev.Position) {
				s.TryUpgrade()
			}
		}
	}
	return false
}

// TryUpgrade pays for and applies one weapon upgrade if the balance
// covers it.
func (s *Session) TryUpgrade() bool {
	cost := s.weapon.UpgradeCost()
	if !s.economy.Debit(cost) {
		s.stats.Rejected++
		s.EventBus.Publish(event.NewUpgradeEvent(event.UpgradeRejected, s,
			s.weapon.Power(), cost, s.economy.Balance()))
		s.logger.Debug(s.logCtx, "upgrade rejected", "cost", cost, "balance", s.economy.Balance())
		return false
	}

	s.weapon.Upgrade()
	s.stats.Upgrades++
	s.EventBus.Publish(event.NewUpgradeEvent(event.WeaponUpgraded, s,
		s.weapon.Power(), s.weapon.UpgradeCost(), s.economy.Balance()))
	s.logger.Info(s.logCtx, "weapon upgraded",
		"power", s.weapon.Power(),
		"next_cost", s.weapon.UpgradeCost(),
		"balance", s.economy.Balance(),
	)
	return true
}

func (s *Session) spawnBodies() {
	bodies := s.Config.Bodies
	if len(s.bodies) == 0 && bodies.IdleSpawnMass > 0 {
		s.Spawn(bodies.IdleSpawnMass)
	}

	if bodies.SpawnOdds <= 0 || s.rng.IntN(bodies.SpawnOdds) != 0 {
		return
	}
	mass := bodies.StartingMass
	if bodies.MassJitter > 0 {
		mass += s.rng.IntN(bodies.MassJitter + 1)
	}
	s.Spawn(mass)
}

func (s *Session) removeDeadBodies() {
	live := s.bodies[:0]
	for _, body := range s.bodies {
		if !body.IsDead() {
			live = append(live, body)
			continue
		}

		credited := body.StartingMass()
		s.stats.Kills++
		s.stats.Credited += credited

		ev := event.NewBodyEvent(event.BodyDestroyed, s,
			uint64(body.ID), body.Mass(), body.StartingMass(), body.Position)
		ev.Credited = credited
		s.EventBus.Publish(ev)
		s.logger.Debug(s.logCtx, "body destroyed",
			"body_id", uint64(body.ID),
			"credited", credited,
			"balance", s.economy.Balance(),
		)
	}
	// drop references held past the new length
	for i := len(live); i < len(s.bodies); i++ {
		s.bodies[i] = nil
	}
	s.bodies = live
}

// checkAnchorCollision reports whether any live body overlaps the anchor.
// Candidates come from a quadtree query around the anchor; the exact test
// is circle against circle.
func (s *Session) checkAnchorCollision() bool {
	if len(s.bodies) == 0 {
		return false
	}

	anchor := s.anchor.GetCollider()
	maxRadius := 0.0
	for _, body := range s.bodies {
		maxRadius = math.Max(maxRadius, body.GetCollider().Radius)
	}

	reach := anchor.Radius + maxRadius
	half := math.Max(float64(max(s.Config.Window.Width, s.Config.Window.Height)), s.tuning.FiringRadius) + reach
	index := physics.NewQuadTree[*entity.Body](physics.Rect{Center: anchor.Center, Width: half * 2, Height: half * 2}, 8)
	for _, body := range s.bodies {
		index.Insert(body.Position, body)
	}

	area := physics.Rect{Center: anchor.Center, Width: reach * 2, Height: reach * 2}
	for _, body := range index.Query(area) {
		if !anchor.Collides(body.GetCollider()) {
			continue
		}
		s.anchor.MarkDestroyed()
		s.EventBus.Publish(event.NewCollisionEvent(s, uint64(s.anchor.ID), uint64(body.ID)))
		s.logger.Info(s.logCtx, "anchor destroyed",
			"body_id", uint64(body.ID),
			"tick", s.tick,
		)
		return true
	}
	return false
}

func (s *Session) draw(r entity.Renderer, targets []*entity.Body) {
	s.anchor.Draw(r)
	for _, body := range s.bodies {
		body.Draw(r)
	}
	for _, body := range targets {
		if !body.IsDead() {
			s.weapon.Fire(r, s.anchor, body)
		}
	}

	r.DrawText(fmt.Sprintf("Balance: %d", s.economy.Balance()), physics.Vector2D{X: 10, Y: 10}, hudColor)
	r.DrawText(fmt.Sprintf("Power: %d", s.weapon.Power()), physics.Vector2D{X: 10, Y: 30}, hudColor)
	r.DrawText(fmt.Sprintf("Upgrade cost: %d", s.weapon.UpgradeCost()), physics.Vector2D{X: 10, Y: 50}, hudColor)
	r.DrawText(UpgradeLabel, s.upgrade.Min(), buttonColor)
}

// UpgradeLabel is the caption drawn on the upgrade control
const UpgradeLabel = "[ UPGRADE ]"

func (s *Session) terminate(reason string) {
	if s.state == StateTerminated {
		return
	}
	s.state = StateTerminated
	s.running.Store(false)
	s.stats.EndReason = reason
	s.snapshot.Store(s.buildSnapshot())

	s.EventBus.Publish(&event.GameEndEvent{
		BaseEvent: event.BaseEvent{EventType: event.GameEnded, Source: s},
		Reason:    reason,
		Tick:      s.tick,
		Kills:     s.stats.Kills,
		Credited:  s.stats.Credited,
		Balance:   s.economy.Balance(),
		Upgrades:  s.stats.Upgrades,
	})
	s.logger.Info(s.logCtx, "session ended",
		"reason", reason,
		"ticks", s.tick,
		"kills", s.stats.Kills,
		"credited", s.stats.Credited,
		"balance", s.economy.Balance(),
		"duration", time.Since(s.startedAt).String(),
	)
}

func (s *Session) buildSnapshot() *GameState {
	bodies := make([]BodyState, 0, len(s.bodies))
	for _, b := range s.bodies {
		bodies = append(bodies, BodyState{
			ID:           uint64(b.ID),
			Position:     b.Position,
			Velocity:     b.Velocity,
			Mass:         b.Mass(),
			StartingMass: b.StartingMass(),
			Size:         b.DisplaySize(),
		})
	}
	return &GameState{
		Tick:    s.tick,
		Running: s.state == StateRunning,
		Anchor: AnchorState{
			Position:  s.anchor.Position,
			Radius:    s.anchor.Radius,
			Destroyed: s.anchor.IsDestroyed(),
		},
		Bodies:      bodies,
		Balance:     s.economy.Balance(),
		Power:       s.weapon.Power(),
		UpgradeCost: s.weapon.UpgradeCost(),
		Kills:       s.stats.Kills,
	}
}

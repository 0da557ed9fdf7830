package gameserver

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events/subscribers"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/rules"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/states"
)

const (
	gameIDLength   = 5
	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxPlayers     = 2

	// DefaultMaxGames is how many games the server keeps before evicting the oldest
	DefaultMaxGames = 99

	cleanupInterval      = 5 * time.Minute
	finishedGameTTL      = 10 * time.Minute
	abandonedGameTimeout = 30 * time.Minute
)

type playerInfo struct {
	id   string
	name string
	side game.Side
}

type gameInstance struct {
	id       string
	mu       sync.RWMutex
	logger   zerolog.Logger
	rng      *rand.Rand
	maxTurns int

	players  []playerInfo
	toAct    game.Side
	halfMaps [2]*core.Grid
	engine   *game.Engine

	// winner and endReason settle games that end before the engine exists
	winner    game.Side
	endReason string

	// stateID changes whenever anything a client could observe changes
	stateID string

	stateMachine *states.StateMachine
	eventBus     *events.EventBus
	idempotency  *IdempotencyManager

	createdAt    time.Time
	lastActivity time.Time
}

// GameManager manages all active game instances
type GameManager struct {
	mu       sync.RWMutex
	games    map[string]*gameInstance
	order    []string
	maxGames int
	maxTurns int

	rngMu sync.Mutex
	rng   *rand.Rand

	validator *rules.Validator
	logger    zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// ManagerOption configures a GameManager
type ManagerOption func(*GameManager)

// WithRand seeds game ids, first movers and treasure placement from rng
func WithRand(rng *rand.Rand) ManagerOption {
	return func(gm *GameManager) {
		if rng != nil {
			gm.rng = rng
		}
	}
}

// WithMaxTurns sets the turn limit of every new game
func WithMaxTurns(n int) ManagerOption {
	return func(gm *GameManager) {
		if n > 0 {
			gm.maxTurns = n
		}
	}
}

// WithValidator replaces the default half map validator
func WithValidator(v *rules.Validator) ManagerOption {
	return func(gm *GameManager) {
		if v != nil {
			gm.validator = v
		}
	}
}

// NewGameManager creates a game manager holding at most maxGames games.
// A non-positive maxGames means DefaultMaxGames.
func NewGameManager(maxGames int, logger zerolog.Logger, opts ...ManagerOption) *GameManager {
	if maxGames <= 0 {
		maxGames = DefaultMaxGames
	}
	gm := &GameManager{
		games:    make(map[string]*gameInstance),
		maxGames: maxGames,
		maxTurns: game.DefaultMaxTurns,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger.With().Str("component", "game_manager").Logger(),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(gm)
	}
	if gm.validator == nil {
		gm.validator = rules.NewValidator(rules.DefaultLimits(), logger)
	}

	go gm.runCleanup()

	return gm
}

// Close stops the cleanup goroutine
func (gm *GameManager) Close() {
	gm.stopOnce.Do(func() { close(gm.stop) })
}

// Validator returns the half map validator shared by all games
func (gm *GameManager) Validator() *rules.Validator {
	return gm.validator
}

func (gm *GameManager) randIntn(n int) int {
	gm.rngMu.Lock()
	defer gm.rngMu.Unlock()
	return gm.rng.Intn(n)
}

func (gm *GameManager) randInt63() int64 {
	gm.rngMu.Lock()
	defer gm.rngMu.Unlock()
	return gm.rng.Int63()
}

// newGameIDLocked draws ids until one is unused. Must be called with mu held.
func (gm *GameManager) newGameIDLocked() string {
	b := make([]byte, gameIDLength)
	for {
		for i := range b {
			b[i] = gameIDAlphabet[gm.randIntn(len(gameIDAlphabet))]
		}
		if _, used := gm.games[string(b)]; !used {
			return string(b)
		}
	}
}

// CreateGame starts a new game waiting for two players. When the manager is
// full the oldest game is dropped.
func (gm *GameManager) CreateGame() *gameInstance {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for len(gm.games) >= gm.maxGames && len(gm.order) > 0 {
		oldest := gm.order[0]
		gm.removeLocked(oldest)
		gm.logger.Info().
			Str("game_id", oldest).
			Int("max_games", gm.maxGames).
			Msg("Evicted oldest game")
	}

	id := gm.newGameIDLocked()
	g := newGameInstance(id, gm.maxTurns, rand.New(rand.NewSource(gm.randInt63())), gm.logger)
	gm.games[id] = g
	gm.order = append(gm.order, id)

	gm.logger.Info().
		Str("game_id", id).
		Int("active_games", len(gm.games)).
		Msg("Game created")

	return g
}

// GetGame looks up a game by id
func (gm *GameManager) GetGame(id string) (*gameInstance, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	g, ok := gm.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, id)
	}
	return g, nil
}

// ActiveGames returns the number of games held in memory
func (gm *GameManager) ActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// removeLocked drops a game from the map and the creation order.
// Must be called with mu held.
func (gm *GameManager) removeLocked(id string) {
	delete(gm.games, id)
	for i, gid := range gm.order {
		if gid == id {
			gm.order = append(gm.order[:i], gm.order[i+1:]...)
			break
		}
	}
}

// runCleanup periodically removes finished and abandoned games
func (gm *GameManager) runCleanup() {
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().
				Interface("panic", r).
				Msg("Game cleanup goroutine panicked - restarting")
			time.Sleep(5 * time.Second)
			go gm.runCleanup()
		}
	}()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case now := <-ticker.C:
			gm.cleanupGames(now)
		}
	}
}

// cleanupGames removes finished games after finishedGameTTL and games without
// activity for abandonedGameTimeout. It returns how many games were removed.
func (gm *GameManager) cleanupGames(now time.Time) int {
	// Collect references first so no game lock is taken under the manager lock
	gm.mu.RLock()
	refs := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		refs = append(refs, g)
	}
	gm.mu.RUnlock()

	var toDelete []string
	for _, g := range refs {
		g.mu.RLock()
		idle := now.Sub(g.lastActivity)
		reason := ""
		switch {
		case g.stateMachine.CurrentPhase().IsTerminal() && idle > finishedGameTTL:
			reason = "finished game TTL expired"
		case idle > abandonedGameTimeout:
			reason = "game abandoned (no activity)"
		}
		createdAt := g.createdAt
		g.mu.RUnlock()

		if reason != "" {
			toDelete = append(toDelete, g.id)
			gm.logger.Info().
				Str("game_id", g.id).
				Str("reason", reason).
				Dur("age", now.Sub(createdAt)).
				Dur("inactive", idle).
				Msg("Cleaning up game")
		}
	}

	if len(toDelete) == 0 {
		return 0
	}

	gm.mu.Lock()
	for _, id := range toDelete {
		gm.removeLocked(id)
	}
	remaining := len(gm.games)
	gm.mu.Unlock()

	gm.logger.Info().
		Int("cleaned", len(toDelete)).
		Int("remaining", remaining).
		Msg("Game cleanup completed")

	return len(toDelete)
}

func newGameInstance(id string, maxTurns int, rng *rand.Rand, logger zerolog.Logger) *gameInstance {
	logger = logger.With().Str("game_id", id).Logger()

	bus := events.NewEventBus(logger)
	bus.Subscribe(subscribers.NewLoggerSubscriber("logger-"+id, logger, zerolog.DebugLevel))

	now := time.Now()
	g := &gameInstance{
		id:           id,
		logger:       logger,
		rng:          rng,
		maxTurns:     maxTurns,
		toAct:        game.NoSide,
		winner:       game.NoSide,
		stateID:      uuid.NewString(),
		stateMachine: states.NewStateMachine(states.NewGameContext(id, maxPlayers, logger), bus),
		eventBus:     bus,
		idempotency:  NewIdempotencyManager(),
		createdAt:    now,
		lastActivity: now,
	}
	bus.Publish(events.NewGameCreatedEvent(id))
	return g
}

// touch records activity and hands out a new state id
func (g *gameInstance) touch() {
	g.lastActivity = time.Now()
	g.stateID = uuid.NewString()
}

func (g *gameInstance) playerUnlocked(playerID string) (playerInfo, error) {
	for _, p := range g.players {
		if p.id == playerID {
			return p, nil
		}
	}
	return playerInfo{}, fmt.Errorf("%w: %q in game %s", ErrPlayerNotFound, playerID, g.id)
}

// toActUnlocked is the side expected to send the next request, or NoSide
// while nobody may act
func (g *gameInstance) toActUnlocked() game.Side {
	if g.engine != nil {
		if g.engine.IsGameOver() {
			return game.NoSide
		}
		return g.engine.ToAct()
	}
	return g.toAct
}

func (g *gameInstance) winnerUnlocked() game.Side {
	if g.engine != nil {
		return g.engine.GetWinner()
	}
	return g.winner
}

func (g *gameInstance) statusUnlocked(side game.Side) PlayerStatus {
	switch g.stateMachine.CurrentPhase() {
	case states.PhaseEnded:
		switch g.winnerUnlocked() {
		case game.NoSide:
			return StatusDraw
		case side:
			return StatusWon
		default:
			return StatusLost
		}
	case states.PhaseError:
		return StatusDraw
	}
	if g.toActUnlocked() == side {
		return StatusMustAct
	}
	return StatusMustWait
}

// Register seats a new player and returns it. The second registration picks
// the side that sends the first half map at random.
func (g *gameInstance) Register(name string) (playerInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := checkRules(g, game.NoSide,
		PlayerCountRule{MaxPlayers: maxPlayers},
		GameReadyRule{Allowed: states.GamePhase.CanAddPlayers},
	)
	if err != nil {
		return playerInfo{}, err
	}

	p := playerInfo{
		id:   uuid.NewString(),
		name: name,
		side: game.Side(len(g.players)),
	}
	g.players = append(g.players, p)
	g.stateMachine.GetContext().PlayerCount = len(g.players)
	g.eventBus.Publish(events.NewPlayerRegisteredEvent(g.id, p.id, int(p.side)))

	if len(g.players) == maxPlayers {
		g.toAct = game.Side(g.rng.Intn(maxPlayers))
		if err := g.stateMachine.TransitionTo(states.PhaseMapExchange, "both players registered"); err != nil {
			return playerInfo{}, err
		}
	}
	g.touch()

	g.logger.Info().
		Str("player_id", p.id).
		Str("player_name", name).
		Str("side", p.side.String()).
		Msg("Player registered")

	return p, nil
}

// SubmitHalfMap accepts or rejects the half map of a player. decodeErr is the
// result of decoding the request: protocol errors are returned without a
// penalty, map violations make the submitter lose like any invalid map.
func (g *gameInstance) SubmitHalfMap(playerID string, half *core.Grid, decodeErr error, validator *rules.Validator) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerUnlocked(playerID)
	if err != nil {
		return err
	}

	err = checkRules(g, p.side,
		GameReadyRule{Allowed: func(ph states.GamePhase) bool { return ph != states.PhaseRegistering }},
		HalfMapOnceRule{},
		GameReadyRule{Allowed: states.GamePhase.CanReceiveHalfMaps},
		PlayerTurnRule{},
	)
	if err != nil {
		return err
	}

	if decodeErr == nil {
		decodeErr = validateHalfMap(half, validator)
	}
	if decodeErr != nil {
		var violation *core.MapViolation
		if !errors.As(decodeErr, &violation) {
			return decodeErr
		}
		g.eventBus.Publish(events.NewHalfMapRejectedEvent(g.id, p.id, int(p.side), violation))
		g.loseUnlocked(p.side, fmt.Sprintf("half map rejected: %s", violation.Kind))
		return fmt.Errorf("%s side loses: %w", p.side, decodeErr)
	}

	g.halfMaps[p.side] = half
	ctx := g.stateMachine.GetContext()
	ctx.HalfMaps++
	g.eventBus.Publish(events.NewHalfMapAcceptedEvent(g.id, p.id, int(p.side)))
	g.toAct = p.side.Other()

	if ctx.HasFullMap() {
		if err := g.startUnlocked(); err != nil {
			ctx.Error = err
			if terr := g.stateMachine.TransitionTo(states.PhaseError, err.Error()); terr != nil {
				g.logger.Error().Err(terr).Msg("Failed to enter error phase")
			}
			g.touch()
			return err
		}
	}
	g.touch()
	return nil
}

func validateHalfMap(half *core.Grid, validator *rules.Validator) error {
	if err := validator.Validate(half); err != nil {
		return err
	}
	_, err := game.CheckHalf(half)
	return err
}

// startUnlocked assembles the full map and hands the game to the engine
func (g *gameInstance) startUnlocked() error {
	assembly, err := game.Assemble(g.halfMaps[game.SideFirst], g.halfMaps[game.SideSecond], g.rng)
	if err != nil {
		return fmt.Errorf("assembling map: %w", err)
	}
	g.eventBus.Publish(events.NewMapAssembledEvent(g.id, assembly.Grid.W, assembly.Grid.H, assembly.Swapped))

	engine, err := game.NewEngine(assembly, g.toAct, g.rng, g.logger,
		game.WithMaxTurns(g.maxTurns),
		game.WithEvents(g.id, g.eventBus),
	)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	g.engine = engine

	return g.stateMachine.TransitionTo(states.PhaseRunning, "full map assembled")
}

// loseUnlocked ends a game that has no engine yet
func (g *gameInstance) loseUnlocked(side game.Side, reason string) {
	g.winner = side.Other()
	g.endReason = reason
	g.eventBus.Publish(events.NewPlayerLostEvent(g.id, int(side), 0, reason))
	g.eventBus.Publish(events.NewGameEndedEvent(g.id, int(g.winner), time.Since(g.createdAt), 0))
	g.endUnlocked(reason)
}

func (g *gameInstance) endUnlocked(reason string) {
	g.stateMachine.GetContext().Winner = int(g.winnerUnlocked())
	if err := g.stateMachine.TransitionTo(states.PhaseEnded, reason); err != nil {
		g.logger.Error().Err(err).Str("reason", reason).Msg("Failed to end game")
	}
	g.touch()

	history := g.stateMachine.GetHistory()
	phases := make([]string, 0, len(history))
	for _, t := range history {
		phases = append(phases, t.To.String())
	}
	g.logger.Info().Strs("phases", phases).Str("reason", reason).Msg("Game lifecycle finished")
}

// Move applies one move for the player. Repeated request ids return the
// first response without moving again.
func (g *gameInstance) Move(playerID string, dir core.Direction, requestID string) (*structpb.Struct, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.playerUnlocked(playerID)
	if err != nil {
		return nil, err
	}
	if cached := g.idempotency.Check(p.id, requestID); cached != nil {
		g.logger.Debug().
			Str("player_id", p.id).
			Str("request_id", requestID).
			Msg("Returning cached move response")
		return cached, nil
	}

	err = checkRules(g, p.side,
		GameReadyRule{Allowed: states.GamePhase.CanReceiveMoves},
		PlayerTurnRule{},
	)
	if err != nil {
		return nil, err
	}

	res, err := g.engine.Move(p.side, dir)
	if err != nil {
		return nil, err
	}
	if g.engine.IsGameOver() {
		g.endReason = g.engine.EndReason()
		g.endUnlocked(g.endReason)
	} else {
		g.touch()
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		fieldArrived: res.Arrived,
		fieldPending: res.Pending,
	})
	if err != nil {
		return nil, err
	}
	g.idempotency.Store(p.id, requestID, resp)
	return resp, nil
}

// State snapshots the game as seen by the player
func (g *gameInstance) State(playerID string) (playerState, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, err := g.playerUnlocked(playerID)
	if err != nil {
		return playerState{}, err
	}

	st := playerState{
		gameID:  g.id,
		stateID: g.stateID,
		phase:   g.stateMachine.CurrentPhase(),
		status:  g.statusUnlocked(p.side),
	}
	if g.engine != nil {
		v, err := g.engine.View(p.side)
		if err != nil {
			return playerState{}, err
		}
		st.view = &v
		st.collected = v.Collected
	}
	return st, nil
}

// Phase returns the current lifecycle phase
func (g *gameInstance) Phase() states.GamePhase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stateMachine.CurrentPhase()
}

// ID returns the five character game id
func (g *gameInstance) ID() string { return g.id }

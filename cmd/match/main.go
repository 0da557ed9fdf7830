package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/treasurehunt/TreasureHuntAI/internal/agent"
	"github.com/treasurehunt/TreasureHuntAI/internal/config"
	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/events/subscribers"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/mapgen"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/rules"
	"github.com/treasurehunt/TreasureHuntAI/internal/grpc/gameserver"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	seed := flag.Int64("seed", 0, "Seed for maps and treasure placement (0 for time based)")
	logLevel := flag.String("log-level", "", "Log level (empty to use config default)")
	showBoard := flag.Bool("board", false, "Print the board after every turn")
	server := flag.String("server", "", "Play one side on a game server at host:port instead of a local match")
	gameID := flag.String("game", "", "Game to join on the server; a new game is created when empty")
	name := flag.String("name", "agent", "Player name sent to the server")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *logLevel == "" {
		*logLevel = cfg.Logging.Level
	}
	config.SetupLogging(*logLevel, cfg.Logging.Format)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	fmt.Printf("Match seed: %d\n", *seed)

	validator := rules.NewValidator(rules.LimitsFromConfig(cfg.Game.Map, cfg.Game.Rules), log.Logger)
	gen := mapgen.NewGenerator(mapgen.MapConfigFrom(cfg.Game.Map), rng, validator, log.Logger)
	planner := func() *agent.Planner {
		return agent.NewPlanner(log.Logger, agent.WithFrontierThreshold(cfg.Agent.FrontierGrassThreshold))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *server != "" {
		if err := playRemote(ctx, *server, *gameID, *name, gen, agent.New(planner(), log.Logger)); err != nil {
			log.Fatal().Err(err).Msg("Remote game failed")
		}
		return
	}

	assembly, err := game.Assemble(gen.Generate(), gen.Generate(), rng)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble map")
	}

	bus := events.NewEventBus(log.Logger)
	bus.Subscribe(subscribers.NewLoggerSubscriber("match-logger", log.Logger, zerolog.DebugLevel))

	engine, err := game.NewEngine(assembly, game.Side(rng.Intn(2)), rng, log.Logger,
		game.WithMaxTurns(cfg.Game.Match.MaxTurns),
		game.WithEvents("local", bus),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start engine")
	}

	fmt.Printf("Initial board:\n%s\n", engine.Board(game.NoSide))

	m := agent.NewMatch(engine, agent.New(planner(), log.Logger), agent.New(planner(), log.Logger), log.Logger)
	if *showBoard {
		m.OnTurn = func(e *game.Engine) {
			fmt.Printf("Turn %d/%d:\n%s\n", e.Turn(), e.MaxTurns(), e.Board(game.NoSide))
		}
	}

	winner, err := m.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Match aborted")
	}

	fmt.Printf("Final board:\n%s\n", engine.Board(game.NoSide))
	if winner == game.NoSide {
		fmt.Printf("Game over after %d turns: draw (%s)\n", engine.Turn(), engine.EndReason())
	} else {
		fmt.Printf("Game over after %d turns: %s side wins (%s)\n", engine.Turn(), winner, engine.EndReason())
	}
	for _, s := range game.Sides {
		st := engine.Stats(s)
		fmt.Printf("  %-6s sends: %3d  steps: %3d  cells seen: %3d  efficiency: %.2f  decisions: %d\n",
			s, st.Moves, st.Steps, st.CellsSeen, st.Efficiency(), m.Agent(s).Decisions())
	}
}

// playRemote plays one side of a game hosted by a game server
func playRemote(ctx context.Context, addr, gameID, name string, gen *mapgen.Generator, a *agent.Agent) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	client := gameserver.NewClient(conn, log.Logger)
	if gameID == "" {
		if gameID, err = client.CreateGame(ctx); err != nil {
			return err
		}
		fmt.Printf("Created game %s\n", gameID)
	}
	if err := client.Join(ctx, gameID, name); err != nil {
		return err
	}

	st, err := client.WaitForHalfMapTurn(ctx)
	if err != nil {
		return err
	}
	if !st.Status.IsFinal() {
		if err := client.SubmitHalfMap(ctx, gen.Generate()); err != nil {
			return err
		}
	}

	status, err := a.Play(ctx, client)
	if err != nil {
		return err
	}
	fmt.Printf("Game %s over: %s after %d decisions\n", gameID, status, a.Decisions())
	return nil
}

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/treasurehunt/TreasureHuntAI/internal/config"
	"github.com/treasurehunt/TreasureHuntAI/internal/game"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/core"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/mapgen"
	"github.com/treasurehunt/TreasureHuntAI/internal/game/rules"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	count := flag.Int("count", 1, "Number of half maps to generate; only the first is printed")
	seed := flag.Int64("seed", 0, "Generator seed (0 for time based)")
	logLevel := flag.String("log-level", "", "Log level (empty to use config default)")
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
	fmt.Printf("Generator seed: %d\n", *seed)

	validator := rules.NewValidator(rules.LimitsFromConfig(cfg.Game.Map, cfg.Game.Rules), log.Logger)
	gen := mapgen.NewGenerator(mapgen.MapConfigFrom(cfg.Game.Map), rand.New(rand.NewSource(*seed)), validator, log.Logger)

	start := time.Now()
	invalid := 0
	for i := 0; i < *count; i++ {
		half := gen.Generate()
		if err := validator.Validate(half); err != nil {
			invalid++
			log.Error().Err(err).Int("map", i).Msg("Generated half map failed validation")
			continue
		}
		if _, err := game.CheckHalf(half); err != nil {
			invalid++
			log.Error().Err(err).Int("map", i).Msg("Generated half map cannot be assembled")
			continue
		}
		if i == 0 {
			fmt.Println(half.String())
		}
	}

	ruleNames := make([]string, 0, 6)
	for _, r := range validator.Rules() {
		ruleNames = append(ruleNames, r.Name())
	}
	fmt.Printf("Rules: %s\n", strings.Join(ruleNames, ", "))

	stats := gen.Stats()
	fmt.Printf("Maps: %d  attempts: %d  invalid: %d  elapsed: %s\n",
		stats.Maps, stats.Attempts, invalid, time.Since(start).Round(time.Millisecond))

	kinds := make([]string, 0, len(stats.Rejections))
	for k := range stats.Rejections {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  rejected %-24s %d\n", k, stats.Rejections[core.ViolationKind(k)])
	}

	if invalid > 0 {
		log.Fatal().Int("invalid", invalid).Msg("Generator produced invalid half maps")
	}
}

// simulate прогоняет забеги скриптовым ботом без графики и печатает
// уведомления симуляции.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/roguelite-platformer/internal/app"
	"github.com/annel0/roguelite-platformer/internal/config"
	"github.com/annel0/roguelite-platformer/internal/game"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/notify"
)

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML конфигурации")
		level      = flag.Int("level", 1, "номер уровня")
		seed       = flag.Int64("seed", 0, "seed генерации (0 = из конфига)")
		maxTicks   = flag.Int("ticks", 0, "лимит тиков на забег (0 = из конфига)")
		runs       = flag.Int("runs", 3, "число забегов, смерть начинает новый")
		quiet      = flag.Bool("quiet", false, "не печатать уведомления")
		asJSON     = flag.Bool("json", false, "итог в JSON")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *maxTicks > 0 {
		cfg.Simulation.MaxTicks = *maxTicks
	}

	if err := logging.InitDefaultLoggerWithOptions("simulate", logging.Options{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: logging.WARN,
		FileLevel:    logging.ParseLevel(cfg.Logging.FileLevel),
	}); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	ctx := context.Background()
	sim, err := app.New(ctx, cfg, "simulate")
	if err != nil {
		logging.Error("❌ Ошибка инициализации: %v", err)
		os.Exit(1)
	}
	defer sim.Close(ctx)

	if !*quiet {
		sim.Dispatcher.SubscribeAll(notify.ListenerFunc(func(e notify.Event) {
			fmt.Printf("%-20s %+v\n", e.Kind(), e)
		}))
	}

	session, err := game.NewSession(sim.Catalog, sim.Progress, sim.Dispatcher, game.Options{
		Level:       *level,
		LevelLength: cfg.Simulation.LevelLength,
		Seed:        cfg.Simulation.Seed,
		TickRate:    cfg.Simulation.TickRate,
		Observer:    sim.Metrics,
	})
	if err != nil {
		logging.Error("❌ %v", err)
		sim.Close(ctx)
		os.Exit(1)
	}
	bot := game.NewBot(session)

	for run := 1; run <= *runs; run++ {
		phase := session.Run(bot.Input, cfg.Simulation.MaxTicks)
		fmt.Printf("забег %d: %s на тике %d\n", run, phase, session.Now())
		if phase != game.PhaseDead || run == *runs {
			break
		}
		session.Restart()
		bot = game.NewBot(session)
	}

	snap := session.Snapshot()
	if *asJSON {
		out, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("Итог: фаза=%s x=%.0f здоровье=%.0f/%.0f врагов=%d монет=%d\n",
		snap.Phase, snap.PlayerX, snap.Health, snap.MaxHealth, snap.Enemies, snap.Coins)
}

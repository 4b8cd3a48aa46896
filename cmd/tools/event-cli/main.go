package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/annel0/roguelite-platformer/internal/eventbus"
	"github.com/annel0/roguelite-platformer/internal/notify"
)

const (
	defaultServerURL = "nats://127.0.0.1:4222"
	timeFormat       = "15:04:05.000"
)

func main() {
	var (
		serverURL  = flag.String("server", defaultServerURL, "NATS server URL")
		stream     = flag.String("stream", "GAME_EVENTS", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats, types")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		sources    = flag.String("sources", "", "Sources filter (comma-separated)")
		run        = flag.String("run", "", "Run ID (correlation id) filter")
		duration   = flag.Duration("for", 10*time.Second, "How long to listen (0 = until Ctrl+C)")
		limit      = flag.Int("limit", 100, "Maximum number of events for tail")
	)
	flag.Parse()

	if *command == "types" {
		showTypes()
		return
	}

	bus, err := eventbus.NewJetStreamBus(*serverURL, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to server: %v", err)
	}
	defer bus.Close()

	filter := eventbus.Filter{
		Types:   parseStringList(*eventTypes),
		Sources: parseStringList(*sources),
	}

	ctx, cancel := listenContext(*duration)
	defer cancel()

	switch *command {
	case "tail":
		err = tailEvents(ctx, bus, filter, *run, *limit)
	case "stats":
		err = showStats(ctx, bus, filter, *run)
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats, types")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// listenContext завершается по таймауту или сигналу
func listenContext(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	return tctx, func() { cancel(); stop() }
}

// tailEvents выводит события по мере поступления
func tailEvents(ctx context.Context, bus eventbus.EventBus, f eventbus.Filter, runID string, limit int) error {
	fmt.Printf("🎬 Tailing events (limit: %d)\n", limit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		count int
	)
	sub, err := bus.Subscribe(ctx, f, func(_ context.Context, env *eventbus.Envelope) {
		if runID != "" && env.CorrelationID != runID {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if count >= limit {
			return
		}
		count++
		printEvent(env)
		if count >= limit {
			cancel()
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	mu.Lock()
	fmt.Printf("📊 Received %d events\n", count)
	mu.Unlock()
	return nil
}

func printEvent(env *eventbus.Envelope) {
	ts := env.Timestamp.Local().Format(timeFormat)
	ev, err := eventbus.Decode(env)
	if err != nil {
		fmt.Printf("[%s] %-20s %s (raw: %s)\n", ts, env.EventType, env.Source, env.Payload)
		return
	}
	fmt.Printf("[%s] %-20s %s run=%.8s %+v\n", ts, env.EventType, env.Source, env.CorrelationID, ev)
}

// showStats считает события по типам за время прослушивания
func showStats(ctx context.Context, bus eventbus.EventBus, f eventbus.Filter, runID string) error {
	fmt.Println("📈 Collecting event statistics...")

	var (
		mu     sync.Mutex
		byType = map[string]int{}
		runs   = map[string]bool{}
		total  int
	)
	sub, err := bus.Subscribe(ctx, f, func(_ context.Context, env *eventbus.Envelope) {
		if runID != "" && env.CorrelationID != runID {
			return
		}
		mu.Lock()
		byType[env.EventType]++
		runs[env.CorrelationID] = true
		total++
		mu.Unlock()
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	fmt.Printf("Total events: %d, runs: %d\n", total, len(runs))

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return byType[types[i]] > byType[types[j]] })
	for _, t := range types {
		fmt.Printf("  %-22s %6d\n", t, byType[t])
	}
	return nil
}

// showTypes перечисляет известные типы уведомлений и их subject
func showTypes() {
	fmt.Println("📋 Event types:")
	for _, k := range notify.AllKinds {
		fmt.Printf("  %-22s %s\n", k, eventbus.Subject(string(k)))
	}
}

// parseStringList разбирает строку через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

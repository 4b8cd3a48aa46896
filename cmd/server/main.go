package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/roguelite-platformer/internal/api"
	"github.com/annel0/roguelite-platformer/internal/app"
	"github.com/annel0/roguelite-platformer/internal/config"
	"github.com/annel0/roguelite-platformer/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию GAME_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := logging.InitDefaultLoggerWithOptions("hub", logging.Options{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: logging.ParseLevel(cfg.Logging.ConsoleLevel),
		FileLevel:    logging.ParseLevel(cfg.Logging.FileLevel),
	}); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск хаба roguelite...")

	ctx := context.Background()
	hub, err := app.New(ctx, cfg, "hub")
	if err != nil {
		logging.Error("❌ Ошибка инициализации: %v", err)
		return
	}
	defer hub.Close(context.Background())

	gin.SetMode(gin.ReleaseMode)
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	rest, err := api.NewRestServer(api.Config{
		Port:     restPort,
		Progress: hub.Progress,
		Catalog:  hub.Catalog,
		Service:  "hub_api",
		Registry: hub.Registry,
		Gatherer: hub.Registry,
	})
	if err != nil {
		logging.Error("❌ Ошибка создания REST API: %v", err)
		return
	}
	if err := rest.Start(); err != nil {
		logging.Error("❌ Ошибка запуска REST API: %v", err)
		return
	}

	// Отдельный порт для Prometheus, как у игрового сервера
	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(hub.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics сервер: %v", err)
		}
	}()

	logging.Info("📡 REST API=%s, metrics=%s, storage=%s", restPort, metricsAddr, cfg.Storage.Backend)
	logging.Info("✅ Хаб запущен. Нажмите Ctrl+C для остановки")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("🛑 Получен сигнал завершения, останавливаем хаб...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Warn("Остановка REST API: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Остановка metrics: %v", err)
	}
	logging.Info("✅ Хаб остановлен")
}

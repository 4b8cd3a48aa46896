// Package app собирает общие компоненты бинарников: хранилище сохранений,
// прогресс, шину событий, метрики и трассировку.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/config"
	"github.com/annel0/roguelite-platformer/internal/eventbus"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/metrics"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/observability"
	"github.com/annel0/roguelite-platformer/internal/progression"
	"github.com/annel0/roguelite-platformer/internal/storage"
)

// App связанные между собой компоненты одного процесса
type App struct {
	Config     *config.Config
	Catalog    *catalog.Catalog
	Save       storage.SaveStore
	Dispatcher *notify.Dispatcher
	Progress   *progression.Store
	Bus        eventbus.EventBus
	Forwarder  *eventbus.Forwarder
	Metrics    *metrics.SimMetrics
	Registry   *prometheus.Registry

	exporter *eventbus.MetricsExporter
	logSub   eventbus.Subscription
	shutdown observability.Shutdown
	log      *logging.Logger
}

// LoadCatalog читает каталог из файла или возвращает встроенный
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// New открывает хранилище и подключает шину. source попадает в конверты событий.
// При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, source string) (_ *App, err error) {
	a := &App{
		Config:     cfg,
		Dispatcher: notify.NewDispatcher(),
		Registry:   prometheus.NewRegistry(),
		log:        logging.GetServerLogger(),
	}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	if a.Catalog, err = LoadCatalog(cfg.CatalogPath); err != nil {
		return nil, fmt.Errorf("каталог: %w", err)
	}

	if a.Metrics, err = metrics.NewSimMetrics(a.Registry); err != nil {
		return nil, err
	}
	a.Dispatcher.SubscribeAll(a.Metrics)

	if cfg.EventBus.URL != "" {
		retention := time.Duration(cfg.EventBus.Retention) * time.Hour
		js, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, retention)
		if err != nil {
			return nil, err
		}
		a.Bus = js
		a.log.Info("Шина событий: JetStream %s", cfg.EventBus.URL)
	} else {
		a.Bus = eventbus.NewMemoryBus(0)
		a.log.Info("Шина событий: in-memory")
	}

	if a.logSub, err = eventbus.StartLoggingListener(a.Bus); err != nil {
		return nil, err
	}
	if a.exporter, err = eventbus.NewMetricsExporter(a.Bus, a.Registry); err != nil {
		return nil, err
	}
	a.exporter.Start(5 * time.Second)

	a.Forwarder = eventbus.NewForwarder(a.Bus, source, uuid.NewString())
	a.Dispatcher.SubscribeAll(a.Forwarder)

	if a.shutdown, err = observability.InitTelemetry(ctx, cfg.Telemetry); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	if a.Save, err = storage.Open(cfg.Storage); err != nil {
		return nil, err
	}
	a.Progress = progression.NewStore(a.Save, a.Catalog, a.Dispatcher)
	return a, nil
}

// Close останавливает компоненты в обратном порядке. Безопасен для
// частично собранного App.
func (a *App) Close(ctx context.Context) {
	if a.Forwarder != nil {
		a.Forwarder.Close()
		if n := a.Forwarder.Dropped(); n > 0 {
			a.log.Warn("Отброшено событий: %d", n)
		}
	}
	if a.logSub != nil {
		a.logSub.Unsubscribe()
	}
	if a.exporter != nil {
		a.exporter.Stop()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.log.Warn("Закрытие шины: %v", err)
		}
	}
	if a.Save != nil {
		if err := a.Save.Close(); err != nil {
			a.log.Warn("Закрытие хранилища: %v", err)
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.log.Warn("Остановка трассировки: %v", err)
		}
	}
}

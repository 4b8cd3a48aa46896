// Package api реализует REST API хаба: выбор уровня, магазин улучшений,
// способности передвижения и сброс прогресса.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/middleware"
	"github.com/annel0/roguelite-platformer/internal/progression"
)

// Version версия API хаба
const Version = "v1.0.0"

// RestServer REST API хаба
type RestServer struct {
	router   *gin.Engine
	progress *progression.Store
	catalog  *catalog.Catalog
	port     string
	metrics  *ServerMetrics
	httpSrv  *http.Server
	log      *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                // адрес, например ":8088"
	Progress *progression.Store    // прогресс игрока
	Catalog  *catalog.Catalog      // балансные данные
	Service  string                // имя сервиса для метрик и трассировки
	Registry prometheus.Registerer // nil = глобальный регистр
	Gatherer prometheus.Gatherer   // источник /metrics, nil = глобальный
}

// NewRestServer создаёт REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Service == "" {
		config.Service = "hub_api"
	}
	if config.Catalog == nil {
		config.Catalog = catalog.Default()
	}
	if config.Progress == nil {
		return nil, errors.New("api: не задан progression.Store")
	}

	router := gin.New()        // без стандартного logger
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.Service))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw, err := middleware.NewPrometheusMiddleware(config.Service, config.Registry)
	if err != nil {
		return nil, err
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:   router,
		progress: config.Progress,
		catalog:  config.Catalog,
		port:     config.Port,
		metrics:  NewServerMetrics(),
		log:      logging.GetServerLogger(),
	}
	server.setupRoutes()
	return server, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(corsMiddleware())

	api := rs.router.Group("/api")
	{
		api.GET("/progress", rs.handleProgress)
		api.POST("/progress/reset", rs.handleReset)
		api.GET("/levels", rs.handleLevels)
		api.POST("/upgrades/:type", rs.upgradeTypeMiddleware(), rs.handlePurchase)
		api.POST("/unlocks/:tag", rs.handleUnlock)
		api.GET("/catalog", rs.handleCatalog)
		api.GET("/server", rs.handleServerInfo)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler http.Handler сервера (тесты и встраивание)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// Start запускает REST сервер в отдельной горутине
func (rs *RestServer) Start() error {
	rs.httpSrv = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := rs.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ошибка привязки порта приходит сразу
	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
	}
	rs.log.Info("Hub API слушает %s", rs.port)
	return nil
}

// Stop останавливает сервер, дожидаясь текущих запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpSrv == nil {
		return nil
	}
	return rs.httpSrv.Shutdown(ctx)
}

// GenericResponse общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProgressResponse состояние прогресса с ценами магазина. Списывается
// плоская цена Costs, LadderCosts только справочные.
type ProgressResponse struct {
	progression.UpgradeState
	UnlockedLevels int                         `json:"unlockedLevels"`
	MaxLevel       int                         `json:"maxLevel"`
	Costs          map[catalog.UpgradeType]int `json:"costs"`
	LadderCosts    map[catalog.UpgradeType]int `json:"ladderCosts,omitempty"`
}

// LevelInfo элемент списка уровней
type LevelInfo struct {
	Level    int  `json:"level"`
	Unlocked bool `json:"unlocked"`
}

func (rs *RestServer) progressResponse() ProgressResponse {
	ladder := make(map[catalog.UpgradeType]int, len(catalog.UpgradeTypes))
	for _, t := range catalog.UpgradeTypes {
		if cost, ok := rs.catalog.LadderCost(t, rs.progress.UpgradeLevel(t)); ok {
			ladder[t] = cost
		}
	}
	return ProgressResponse{
		UpgradeState:   rs.progress.Snapshot(),
		UnlockedLevels: rs.progress.UnlockedLevels(),
		MaxLevel:       rs.progress.MaxLevel(),
		Costs:          rs.catalog.Upgrades.Costs,
		LadderCosts:    ladder,
	}
}

// handleProgress возвращает монеты, улучшения и открытые уровни
func (rs *RestServer) handleProgress(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Прогресс игрока",
		Data:    rs.progressResponse(),
	})
}

// handleLevels список уровней для выбора
func (rs *RestServer) handleLevels(c *gin.Context) {
	levels := make([]LevelInfo, 0, rs.progress.MaxLevel())
	for i := 1; i <= rs.progress.MaxLevel(); i++ {
		levels = append(levels, LevelInfo{Level: i, Unlocked: rs.progress.IsLevelUnlocked(i)})
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Уровни",
		Data:    levels,
	})
}

// handlePurchase покупка улучшения по плоской цене
func (rs *RestServer) handlePurchase(c *gin.Context) {
	t := catalog.UpgradeType(c.Param("type"))
	if !rs.progress.PurchaseUpgrade(t) {
		cost, _ := rs.catalog.Cost(t)
		c.JSON(http.StatusPaymentRequired, GenericResponse{
			Success: false,
			Message: "Недостаточно монет",
			Data:    gin.H{"coins": rs.progress.Coins(), "cost": cost},
		})
		return
	}
	rs.log.Info("Куплено улучшение %s, уровень %d", t, rs.progress.UpgradeLevel(t))
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Улучшение куплено",
		Data:    rs.progressResponse(),
	})
}

// handleUnlock открывает способность передвижения
func (rs *RestServer) handleUnlock(c *gin.Context) {
	tag := c.Param("tag")
	if !isMovementTag(tag) {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неизвестная способность: " + tag,
		})
		return
	}
	newUnlock := rs.progress.UnlockMovement(tag)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Способность открыта",
		Data:    gin.H{"unlock": tag, "new": newUnlock},
	})
}

// handleReset сбрасывает улучшения и открытые уровни
func (rs *RestServer) handleReset(c *gin.Context) {
	rs.progress.Reset()
	rs.log.Warn("Прогресс сброшен (trace=%s)", c.GetString(middleware.TraceIDKey))
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Прогресс сброшен",
		Data:    rs.progressResponse(),
	})
}

// handleCatalog отдаёт балансные данные, включая лестницу цен
func (rs *RestServer) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Каталог",
		Data:    rs.catalog,
	})
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	cpuPercent, err := rs.metrics.GetCPUUsage()
	if err != nil {
		rs.log.Debug("CPU usage недоступен: %v", err)
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data: ServerInfo{
			Version:    Version,
			Name:       "Roguelite Hub",
			Status:     "running",
			Uptime:     rs.metrics.GetUptime(),
			CPUPercent: cpuPercent,
			Memory:     rs.metrics.GetMemoryStats(),
		},
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func isMovementTag(tag string) bool {
	for _, t := range progression.MovementTags {
		if t == tag {
			return true
		}
	}
	return false
}

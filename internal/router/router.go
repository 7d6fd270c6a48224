package router

import (
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/config"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/handler"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/infra"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/middleware"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/relay"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/service"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, agentCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	publisher := relay.NewPublisher(rdb)
	subscriber := relay.NewSubscriber(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	restauranteRepo := repository.NewRestauranteRepository(db)
	carteiraRepo := repository.NewCarteiraRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	fechamentoRepo := repository.NewFechamentoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	caixaSvc := service.NewCaixaService(caixaRepo, carteiraRepo, publisher)
	fechamentoSvc := service.NewFechamentoService(
		fechamentoRepo, carteiraRepo, pedidoRepo, restauranteRepo,
		publisher, dispatcher,
		decimal.NewFromFloat(cfg.TaxaPlataformaPercent),
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	fechamentoH := handler.NewFechamentoHandler(fechamentoSvc)
	adminFechamentoH := handler.NewAdminFechamentoHandler(fechamentoSvc, fechamentoRepo)
	eventsH := handler.NewEventsHandler(subscriber)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, agentCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.GET("/bootstrap", authH.Bootstrap)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: restaurante, admin — declared per-endpoint
		caixa := v1.Group("/caixa", middleware.RequireRole("restaurante"))
		{
			caixa.POST("/abrir", caixaH.Abrir)
			caixa.POST("/fechar", caixaH.Fechar)
			caixa.POST("/movimentacao", caixaH.RegistrarMovimentacao)
			caixa.GET("/atual", caixaH.Atual)
			caixa.GET("/status", caixaH.Status)
			caixa.GET("/:id/relatorio", caixaH.Relatorio)
			caixa.GET("/historico", caixaH.Historico)
		}

		fechamentos := v1.Group("/fechamentos", middleware.RequireRole("restaurante"))
		{
			fechamentos.GET("/resumo", fechamentoH.Resumo)
			fechamentos.POST("", fechamentoH.Solicitar)
			fechamentos.GET("", fechamentoH.Listar)
			fechamentos.GET("/:id", fechamentoH.Obter)
		}

		v1.GET("/eventos", middleware.RequireRole("restaurante"), eventsH.Restaurante)

		admin := v1.Group("/admin", middleware.RequireRole("admin"))
		{
			admin.GET("/fechamentos", adminFechamentoH.Listar)
			admin.GET("/fechamentos/export", adminFechamentoH.Exportar)
			admin.POST("/fechamentos/:id/aprovar", adminFechamentoH.Aprovar)
			admin.POST("/fechamentos/:id/pagar", adminFechamentoH.MarcarPago)
			admin.POST("/fechamentos/:id/rejeitar", adminFechamentoH.Rejeitar)
			admin.GET("/eventos", eventsH.Admin)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("admin"))
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
			usuarios.PATCH("/:id/reativar", usuariosH.Reativar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package router

import (
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/config"
	"comercioapp/internal/handler"
	"comercioapp/internal/infra"
	"comercioapp/internal/middleware"
	"comercioapp/internal/realtime"
	"comercioapp/internal/repository"
	"comercioapp/internal/service"
	"comercioapp/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived components built in main and shared with the
// background workers. Redis may be nil.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	API        *infra.APIClient
	Tokens     auth.TokenStore
	Outbox     repository.MovimientoPendienteRepository
	Dispatcher *worker.Dispatcher
	Hub        *realtime.Hub
	Registry   *prometheus.Registry
	Metrics    *service.Metrics
}

// New wires services and handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← APIClient / Outbox / Redis
func New(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origenes()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Services ─────────────────────────────────────────────────────────────
	catalogoSvc := service.NewCatalogoService(d.API, d.Redis, cfg.CatalogoCacheTTL, d.Metrics)
	ticketSvc := service.NewTicketService(d.API, catalogoSvc, d.Outbox, d.Dispatcher, d.Hub, d.Metrics)
	servicioSvc := service.NewServicioService(d.API, d.Outbox, cfg.ServicioProductoID, cfg.ServicioComisionPct, d.Metrics)
	cajaSvc := service.NewCajaService(d.API)
	movimientoSvc := service.NewMovimientoService(d.API)
	reporteSvc := service.NewReporteService(d.API)
	authSvc := service.NewAuthService(d.API)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(catalogoSvc)
	ticketH := handler.NewTicketHandler(ticketSvc, d.Hub)
	serviciosH := handler.NewServiciosHandler(servicioSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	movimientosH := handler.NewMovimientosHandler(movimientoSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.API.Breaker(), d.Outbox))
	if cfg.MetricsEnabled && d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// Auth (public)
	authG := r.Group("/v1/auth", middleware.LoginRateLimiter())
	{
		authG.POST("/login", authH.Login)
		authG.POST("/register", authH.Registrar)
	}

	// Protected routes: the bearer token is forwarded to the remote API.
	v1 := r.Group("/v1", middleware.Bearer())
	{
		v1.GET("/usuario", authH.Perfil)
		v1.PUT("/usuario", authH.ActualizarPerfil)

		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/resumen", productosH.Resumen)
			prods.PUT("/:id", productosH.Actualizar)
			prods.PATCH("/:id/activar", productosH.Activar)
			prods.PATCH("/:id/desactivar", productosH.Desactivar)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		cajas := v1.Group("/cajas")
		{
			cajas.GET("", cajaH.Listar)
			cajas.POST("", cajaH.Abrir)
			cajas.GET("/hoy", cajaH.DelDia)
			cajas.GET("/resumen", cajaH.Resumen)
		}

		// Per-caja routes remember the token so the outbox cron can retry
		// that caja's movements after the request is gone.
		caja := v1.Group("/cajas/:id", middleware.RecordarToken(d.Tokens))
		{
			caja.PUT("", cajaH.Actualizar)
			caja.POST("/servicios", serviciosH.Registrar)

			t := caja.Group("/ticket")
			t.GET("", ticketH.Obtener)
			t.DELETE("", ticketH.Limpiar)
			t.POST("/items", ticketH.AgregarItem)
			t.PATCH("/items/:productoId", ticketH.ActualizarItem)
			t.DELETE("/items/:productoId", ticketH.QuitarItem)
			t.POST("/cobrar", ticketH.Cobrar)
			t.GET("/ws", ticketH.Stream)
		}

		movs := v1.Group("/movimientos")
		{
			movs.GET("", movimientosH.Listar)
			movs.POST("", movimientosH.Registrar)
			movs.GET("/resumen", movimientosH.Resumen)
		}

		v1.GET("/ventas/detalle", reportesH.DetalleVentas)
	}

	// Swagger UI: only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

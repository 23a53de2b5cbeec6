package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/propease/internal/billing"
	billingdomain "github.com/smallbiznis/propease/internal/billing/domain"
	"github.com/smallbiznis/propease/internal/cache"
	"github.com/smallbiznis/propease/internal/config"
	"github.com/smallbiznis/propease/internal/meter"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	obslogger "github.com/smallbiznis/propease/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/propease/internal/observability/metrics"
	"github.com/smallbiznis/propease/internal/property"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	"github.com/smallbiznis/propease/internal/reading"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
	"github.com/smallbiznis/propease/internal/tenant"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	property.Module,
	meter.Module,
	tenant.Module,
	reading.Module,
	billing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           !cfg.IsProduction(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(cfg, log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	propertySvc propertydomain.Service
	meterSvc    meterdomain.Service
	tenantSvc   tenantdomain.Service
	readingSvc  readingdomain.Service
	billingSvc  billingdomain.Service

	summaryCache *cache.TTLCache[string, billingdomain.SummaryResponse]
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	PropertySvc propertydomain.Service
	MeterSvc    meterdomain.Service
	TenantSvc   tenantdomain.Service
	ReadingSvc  readingdomain.Service
	BillingSvc  billingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		propertySvc:  p.PropertySvc,
		meterSvc:     p.MeterSvc,
		tenantSvc:    p.TenantSvc,
		readingSvc:   p.ReadingSvc,
		billingSvc:   p.BillingSvc,
		summaryCache: cache.NewTTLCache[string, billingdomain.SummaryResponse](),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	properties := api.Group("/properties")
	{
		properties.POST("", s.CreateProperty)
		properties.GET("", s.ListProperties)
		properties.GET("/:id", s.GetPropertyByID)
		properties.PATCH("/:id", s.UpdateProperty)

		meters := properties.Group("/:id/meters")
		{
			meters.POST("", s.CreateMeter)
			meters.GET("", s.ListMeters)
			meters.GET("/:meterId", s.GetMeterByID)
			meters.PATCH("/:meterId", s.UpdateMeter)
			meters.DELETE("/:meterId", s.RetireMeter)
		}

		tenants := properties.Group("/:id/tenants")
		{
			tenants.POST("", s.CreateTenant)
			tenants.GET("", s.ListTenants)
			tenants.GET("/:tenantId", s.GetTenantByID)
			tenants.PATCH("/:tenantId", s.UpdateTenant)
			tenants.POST("/:tenantId/move-out", s.MoveOutTenant)
		}

		readings := properties.Group("/:id/readings")
		{
			readings.POST("/main", s.RecordMainReading)
			readings.POST("/sub", s.RecordSubReading)
			readings.GET("", s.ListReadings)
		}

		bills := properties.Group("/:id/bills")
		{
			bills.POST("/generate", s.GenerateBills)
			bills.GET("", s.ListBills)
			bills.GET("/summary", s.BillingSummary)
			bills.GET("/:billId", s.GetBillByID)
			bills.GET("/:billId/pdf", s.DownloadBillPDF)
			bills.POST("/:billId/pay", s.MarkBillPaid)
		}
	}
}

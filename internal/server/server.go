package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/config"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	obsmetrics "github.com/dukandar/khata/internal/observability/metrics"
	reportingdomain "github.com/dukandar/khata/internal/reporting/domain"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	return engine
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	loc    *time.Location

	drawerSvc    drawerdomain.Service
	taxSvc       taxdomain.Service
	recordSvc    recorddomain.Service
	reportingSvc reportingdomain.Service
	metrics      *obsmetrics.Metrics
}

type Params struct {
	fx.In

	Engine       *gin.Engine
	Config       config.Config
	Log          *zap.Logger
	DrawerSvc    drawerdomain.Service
	TaxSvc       taxdomain.Service
	RecordSvc    recorddomain.Service
	ReportingSvc reportingdomain.Service
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p Params) *Server {
	loc, err := time.LoadLocation(p.Config.BusinessTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Server{
		engine:       p.Engine,
		cfg:          p.Config,
		log:          p.Log.Named("server"),
		loc:          loc,
		drawerSvc:    p.DrawerSvc,
		taxSvc:       p.TaxSvc,
		recordSvc:    p.RecordSvc,
		reportingSvc: p.ReportingSvc,
		metrics:      p.Metrics,
	}
}

// RegisterRoutes mounts the accounting core API.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.AppVersion})
	})
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := s.engine.Group("/api/v1")
	api.Use(orgMiddleware(s.cfg.DefaultOrgID))

	drawers := api.Group("/drawers/:drawerID")
	drawers.POST("/operations", s.recordDrawerOperation)
	drawers.POST("/close", s.closeDrawer)
	drawers.GET("/balance", s.drawerBalance)
	drawers.GET("/transactions", s.drawerHistory)

	tax := api.Group("/tax")
	tax.GET("/settings", s.getTaxSettings)
	tax.PUT("/settings", s.updateTaxSettings)
	tax.GET("/slabs", s.getActiveSlabs)
	tax.PUT("/slabs", s.replaceSlabs)
	tax.POST("/compute/income", s.computeIncomeTax)
	tax.POST("/compute/zakat", s.computeZakat)
	tax.GET("/filing-schedule", s.filingSchedule)

	records := api.Group("/tax/records")
	records.POST("", s.assessTaxRecord)
	records.GET("", s.listTaxRecords)
	records.GET("/:recordID", s.getTaxRecord)
	records.POST("/:recordID/payments", s.recordTaxPayment)
	records.POST("/:recordID/amend", s.amendTaxRecord)

	api.GET("/reports/summary", s.periodSummary)
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			s.log.Info("http server started", zap.String("addr", s.cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

// orgFromContext returns the organization set by orgMiddleware.
func orgFromContext(c *gin.Context) snowflake.ID {
	return c.MustGet(ctxOrgKey).(snowflake.ID)
}

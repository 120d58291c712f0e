package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "tripquote/internal/config"
	"tripquote/internal/coupon"
	router "tripquote/internal/http"
	"tripquote/internal/metrics"
	"tripquote/internal/repositories"
	"tripquote/internal/services"
	"tripquote/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.InitLogger(env.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		logger.Fatal("Gagal konek ke database", zap.Error(err))
	}
	defer intconfig.CloseDB()
	logger.Info("Berhasil konek ke database MySQL")

	catalog := repositories.CatalogRepository{DB: db, DefaultCurrency: env.DefaultCurrency}

	var cache coupon.Cache = coupon.NewMemoryCache()
	if env.RedisAddr != "" {
		rc := coupon.NewRedisCache(env.RedisAddr)
		defer func() { _ = rc.Close() }()
		cache = rc
	}
	validator := coupon.NewCachedValidator(
		coupon.NewHTTPValidator(env.CouponServiceURL, env.CouponTimeout),
		cache,
		env.CouponCacheTTL,
	)
	validator.CallTimeout = env.CouponTimeout

	m := metrics.NewMetrics(env.MetricsNamespace, prometheus.DefaultRegisterer)

	r := router.NewRouter(env, router.Deps{
		Quotes: services.QuoteService{
			Catalog: catalog,
			Coupons: validator,
			Metrics: m,
		},
		Catalog:  catalog,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server berjalan", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Gagal menjalankan server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Mematikan server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown server gagal", zap.Error(err))
	}

	logger.Info("Server berhenti dengan aman.")
}

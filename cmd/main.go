package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/parkpass/ticketing/internal/config"
	"github.com/parkpass/ticketing/internal/db"
	"github.com/parkpass/ticketing/internal/httpapi"
	"github.com/parkpass/ticketing/internal/logger"
	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/service"
)

const healthService = "parkpass.ticketing"

func main() {
	// 1. .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	// 2. Config from env.
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}

	// 3. Logger.
	logg := logger.New(appCfg.LogLevel, appCfg.LogFormat)

	// 4. Database via GORM.
	gormDB, err := db.NewGormDB(dbCfg, logger.Gorm(logg))
	if err != nil {
		logg.WithError(err).Fatal("init db")
	}

	// 5. Migrations.
	if err := model.AutoMigrate(gormDB); err != nil {
		logg.WithError(err).Fatal("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logg.WithError(err).Fatal("sql DB")
	}
	defer sqlDB.Close()

	// 6. Repositories.
	parkRepo := repository.NewGormParkRepository(gormDB)
	districtRepo := repository.NewGormDistrictRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 7. Services.
	ticketSvc := service.NewTicketService(parkRepo, bookingRepo, eventRepo, logg, appCfg.ParkTimezone)
	catalogSvc := service.NewCatalogService(districtRepo, parkRepo, bookingRepo, logg)
	authSvc := service.NewAuthService(userRepo, parkRepo, appCfg.JWTSecret, appCfg.JWTTTL, logg)
	reportSvc := service.NewReportService(bookingRepo, parkRepo, logg, appCfg.ParkTimezone)

	// 8. Bootstrap super-admin.
	if err := authSvc.EnsureSuperAdmin(context.Background(), appCfg.AdminEmail, appCfg.AdminPassword); err != nil {
		logg.WithError(err).Fatal("ensure super-admin")
	}

	// 9. HTTP API.
	if appCfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httpapi.NewHandler(ticketSvc, catalogSvc, authSvc, reportSvc, logg)
	httpServer := &http.Server{
		Addr: appCfg.HTTPAddr,
		Handler: httpapi.NewRouter(handler, httpapi.RouterConfig{
			CORSOrigins: appCfg.CORSOrigins,
			Log:         logg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.WithField("addr", appCfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.WithError(err).Fatal("http serve")
		}
	}()

	// 10. gRPC health + reflection for the load balancer and grpcurl.
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		logg.WithError(err).Fatalf("listen %s", appCfg.GRPCAddr)
	}

	go func() {
		logg.WithField("addr", appCfg.GRPCAddr).Info("grpc health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logg.WithError(err).Fatal("grpc serve")
		}
	}()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	go watchDB(watchCtx, sqlDB, healthSrv, logg)

	// 11. Graceful shutdown on signal.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logg.Info("shutting down...")
	stopWatch()
	healthSrv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logg.WithError(err).Error("http shutdown")
	}
	grpcServer.GracefulStop()
}

// watchDB flips the health status with database reachability.
func watchDB(ctx context.Context, sqlDB *sql.DB, healthSrv *health.Server, logg *logrus.Logger) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := sqlDB.PingContext(pingCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		if status != last {
			if err != nil {
				logg.WithError(err).Warn("database unreachable")
			}
			healthSrv.SetServingStatus("", status)
			healthSrv.SetServingStatus(healthService, status)
			last = status
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

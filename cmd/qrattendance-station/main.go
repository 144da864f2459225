package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/attendance/decode"
	"github.com/itsariadust/qrattendance/station/internal/attendance/service"
	"github.com/itsariadust/qrattendance/station/internal/attendance/store"
	"github.com/itsariadust/qrattendance/station/internal/attendance/store/postgres"
	"github.com/itsariadust/qrattendance/station/internal/attendance/store/sqlite"
	"github.com/itsariadust/qrattendance/station/internal/config"
	"github.com/itsariadust/qrattendance/station/internal/db"
	"github.com/itsariadust/qrattendance/station/internal/display"
	"github.com/itsariadust/qrattendance/station/internal/grpcapi"
	"github.com/itsariadust/qrattendance/station/internal/httpapi"
)

func main() {
	logger := log.New(os.Stdout, "qrattendance-station ", log.LstdFlags|log.LUTC)

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf(".env: %v", err)
	}
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	conn, err := db.Open(ctx, db.Config{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		URL:    cfg.PostgresDSN(),
		Env:    cfg.Env,
	})
	if err != nil {
		logger.Fatalf("db open: %v", err)
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	var gateway store.Gateway
	switch cfg.DBDriver {
	case db.DriverPostgres:
		gateway = postgres.NewGateway(conn, writer)
	default:
		if cfg.Env == "dev" {
			if err := db.SeedDev(ctx, conn, nil); err != nil {
				logger.Fatalf("db seed: %v", err)
			}
		}
		gateway = sqlite.NewGateway(conn, writer)
	}
	logger.Printf("record store ready (driver=%s, env=%s)", cfg.DBDriver, cfg.Env)

	// Display
	sink := display.New(logger)
	displayCtx, stopDisplay := context.WithCancel(context.Background())
	displayDone := make(chan struct{})
	go func() {
		sink.Run(displayCtx)
		close(displayDone)
	}()

	// gRPC health
	var health *grpcapi.Server
	if cfg.GRPCAddr != "" {
		health = grpcapi.NewServer(grpcapi.Dependencies{Logger: logger, Addr: cfg.GRPCAddr})
		go func() {
			if err := health.Start(); err != nil {
				logger.Printf("grpc server error: %v", err)
				stop()
			}
		}()
	}

	// Scanning
	engine := service.NewToggleEngine(gateway, logger)
	loopCfg := capture.LoopConfig{
		DeviceIndex:           cfg.CameraIndex,
		Cooldown:              cfg.Cooldown,
		ReadBackoff:           cfg.ReadBackoff,
		DisplayDuringCooldown: cfg.DisplayDuringCooldown,
	}
	if health != nil {
		loopCfg.OnStateChange = health.SetCaptureState
	}

	device, err := newDevice(cfg, logger)
	if err != nil {
		logger.Fatalf("camera: %v", err)
	}
	loop := capture.NewLoop(device, decode.New(true, logger), engine, sink, loopCfg, logger)
	if err := loop.Start(ctx); err != nil {
		// Reported once; the camera is not retried.
		logger.Fatalf("capture: %v", err)
	}
	if health != nil {
		health.SetCaptureState(loop.State())
	}

	poller := service.NewPollLoop(gateway, sink, service.PollConfig{Interval: cfg.PollInterval}, logger)
	poller.Start(ctx)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:  logger,
		Addr:    cfg.HTTPAddr,
		Display: sink,
		Capture: loop,
		Records: service.NewRecordLookup(gateway),
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	select {
	case <-ctx.Done():
	case <-loop.Done():
		logger.Printf("capture loop exited")
	}

	// Stop producers first so the last writes land before the store closes.
	loop.Stop()
	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if health != nil {
		health.Shutdown(shutdownCtx)
	}

	stopDisplay()
	<-displayDone
}

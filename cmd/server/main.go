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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tdminh/hrm-backend/internal/blocklist"
	"github.com/tdminh/hrm-backend/internal/config"
	"github.com/tdminh/hrm-backend/internal/es"
	"github.com/tdminh/hrm-backend/internal/handlers"
	"github.com/tdminh/hrm-backend/internal/logging"
	authmw "github.com/tdminh/hrm-backend/internal/middleware/auth"
	loggingmw "github.com/tdminh/hrm-backend/internal/middleware/logging"
	"github.com/tdminh/hrm-backend/internal/mykafka"
	"github.com/tdminh/hrm-backend/internal/service"
	"github.com/tdminh/hrm-backend/internal/tokens"
	httpserver "github.com/tdminh/hrm-backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	registry := blocklist.NewRedis(configuration.REDIS_ADDR, configuration.REDIS_PASSWORD)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := registry.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("redis ping error: %v", err)
		}
		cancel()
	}

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	authSvc := &service.AuthService{
		DB:         db,
		Codec:      tokens.NewCodec([]byte(configuration.JWT_SECRET)),
		Blocklist:  registry,
		AccessTTL:  configuration.ACCESS_TTL,
		RefreshTTL: configuration.REFRESH_TTL,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                db,
		Blocklist:         registry,
		AuthMW:            authmw.New(authSvc),
		AuthHandler:       &handlers.AuthHandler{Svc: authSvc, Producer: prod},
		EmployeeHandler:   &handlers.EmployeeHandler{DB: db, Producer: prod, ES: esClient, Index: "employee"},
		DepartmentHandler: &handlers.DepartmentHandler{DB: db, Producer: prod},
		PositionHandler:   &handlers.PositionHandler{DB: db},
		EducationHandler:  &handlers.EducationHandler{DB: db},
		ContractHandler:   &handlers.ContractHandler{DB: db},
		PayrollHandler:    &handlers.PayrollHandler{DB: db, Producer: prod},
		AttendanceHandler: &handlers.AttendanceHandler{DB: db, Producer: prod},
		WorkPointHandler:  &handlers.WorkPointHandler{DB: db},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := registry.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

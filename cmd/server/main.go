package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/DreamoreWM/365d/internal/config"
	"github.com/DreamoreWM/365d/internal/db"
	"github.com/DreamoreWM/365d/internal/server"
	"github.com/DreamoreWM/365d/internal/services"
)

// simple middleware chain
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	sweepFlag       = flag.Bool("sweep", false, "Run one status sweep and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("Erreur connexion DB: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}

	manager := services.NewPrestationManager(dbConn)
	if *sweepFlag {
		res, serr := manager.SweepAll(time.Now())
		log.Printf("sweep: bons=%d prestations=%d updated=%d failed=%d", res.Bons, res.Prestations, res.Updated, res.Failed)
		if serr != nil {
			log.Fatalf("sweep failed: %v", serr)
		}
		return
	}

	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)
	startSweepScheduler(cfg.SweepSchedule, manager)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: withLogging(server.New(dbConn, manager))}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// startSweepScheduler runs the status sweep on a standard 5-field cron
// expression (minute hour day-of-month month day-of-week). An empty schedule
// disables it.
func startSweepScheduler(schedule string, manager *services.PrestationManager) {
	if schedule == "" {
		return
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid SWEEP_SCHEDULE '%s': %v, scheduled sweep disabled", schedule, err)
		return
	}
	log.Printf("Sweep scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			log.Printf("Next sweep at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))

			time.Sleep(next.Sub(now))

			res, sweepErr := manager.SweepAll(time.Now())
			if sweepErr != nil {
				log.Printf("Scheduled sweep error: %v", sweepErr)
			}
			log.Printf("Scheduled sweep complete: bons=%d prestations=%d updated=%d failed=%d", res.Bons, res.Prestations, res.Updated, res.Failed)
		}
	}()
}

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

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/config"
	"github.com/mactrack/mactrack/internal/db"
	"github.com/mactrack/mactrack/internal/email"
	"github.com/mactrack/mactrack/internal/models"
	"github.com/mactrack/mactrack/internal/server"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	if *migrateOnlyFlag {
		log.Println("Migrations completed successfully")
		return
	}

	// Sessions whose user was deleted are treated as logged out.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		conn.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	})

	app := server.NewApp(conn, newMailer(cfg))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withLogging(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("%s listening on port %s (env=%s)", cfg.AppName, cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
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
	log.Println("Server stopped gracefully")
}

// newMailer selects the email backend from configuration. Anything but a
// fully configured sendgrid backend degrades to console delivery.
func newMailer(cfg config.Config) email.Mailer {
	if cfg.EmailBackend == "sendgrid" && cfg.SendgridAPIKey != "" {
		return email.NewSendgridMailer(cfg.SendgridAPIKey, cfg.AppName, cfg.FromName, cfg.FromAddress)
	}
	if cfg.EmailBackend == "sendgrid" {
		log.Println("EMAIL_BACKEND=sendgrid but SENDGRID_API_KEY is empty; using console mailer")
	}
	return email.NewConsoleMailer(cfg.AppName, cfg.FromAddress)
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

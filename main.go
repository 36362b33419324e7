package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "redapi/internal/config"
	router "redapi/internal/http"
	"redapi/internal/http/handlers"
	"redapi/internal/mq"
	"redapi/internal/repositories"
	"redapi/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	var (
		slots    services.SlotStore
		bookings services.BookingStore
		types    services.PresentationTypeStore
		dbCheck  func() error
	)

	if env.MemoryStore {
		slots = repositories.NewMemoryAvailabilityStore()
		bookings = repositories.NewMemoryBookingStore()
		types = repositories.NewMemoryPresentationTypeStore()
	} else {
		db := intconfig.ConnectDB(env.DBDSN)
		defer intconfig.CloseDB()

		slotRepo := repositories.AvailabilityRepository{DB: db}
		bookingRepo := repositories.BookingRepository{DB: db}
		typeRepo := repositories.PresentationTypeRepository{DB: db}
		for _, ensure := range []func() error{slotRepo.EnsureSchema, bookingRepo.EnsureSchema, typeRepo.EnsureSchema} {
			if err := ensure(); err != nil {
				log.Fatalf("schema setup failed: %v", err)
			}
		}
		slots, bookings, types = slotRepo, bookingRepo, typeRepo
		dbCheck = intconfig.EnsureDB
	}

	if env.SeedAvailability {
		seeder := services.AvailabilityService{Slots: slots, Bookings: bookings}
		if err := seeder.Seed(); err != nil {
			log.Fatalf("availability seed failed: %v", err)
		}
	}

	emailNotifier := services.NewEmailNotifier(
		env.MailFrom, env.FrontendBaseURL,
		env.SMTPAddr, env.SMTPUsername, env.SMTPPassword,
		env.NotifyWorkers,
	)
	defer emailNotifier.Shutdown()

	notifiers := services.MultiNotifier{emailNotifier}
	if env.AMQPURL != "" {
		publisher, err := mq.NewPublisher(env.AMQPURL, env.AMQPExchange)
		if err != nil {
			log.Printf("warning: rabbitmq unavailable, continuing without event fanout: %v", err)
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
		}
	}

	sessions := services.NewSessionService(services.AdminCredentials{
		Username:     env.AdminUsername,
		Password:     env.AdminPassword,
		PasswordHash: env.AdminPasswordHash,
		SessionTTL:   time.Duration(env.SessionTTLMinutes()) * time.Minute,
	})

	api := handlers.API{
		Slots:    slots,
		Bookings: bookings,
		Types:    types,
		Notifier: notifiers,
		Sessions: sessions,
		DBCheck:  dbCheck,
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router.NewRouter(api, env.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}

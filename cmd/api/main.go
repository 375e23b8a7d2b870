package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/analytics"
	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/device"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/retention"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/domain/workout"
	"gym-manager/backend/internal/firebase"
	apihttp "gym-manager/backend/internal/http"
	"gym-manager/backend/internal/media"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	fb, err := firebase.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer fb.Close()
	authClient, fs := fb.Auth, fb.Firestore

	signer := media.NewSigner(ctx, cfg)
	defer signer.Close()

	// Repositories
	userRepo := user.NewRepo(fs)
	gymRepo := gym.NewRepo(fs)
	trainerRepo := trainer.NewRepo(fs)

	// Services
	gymSvc := gym.NewService(gymRepo, userRepo)
	trainerSvc := trainer.NewService(trainerRepo, cfg.ScopeFetchConcurrency)
	memberSvc := member.NewService(member.NewRepo(fs), trainerSvc, cfg.ScopeFetchConcurrency)
	attendSvc := attendance.NewService(attendance.NewRepo(fs), cfg.ScopeFetchConcurrency)
	analyticsSvc := analytics.NewService(trainerSvc, memberSvc, attendSvc)
	retentionSvc := retention.NewService(memberSvc, attendSvc)
	deviceSvc := device.NewService(device.NewRepo(fs))
	workoutSvc := workout.NewService(workout.NewRepo(fs))

	if cfg.SignedURLServiceAccountEmail == "" {
		log.Println("SIGNED_URL_SERVICE_ACCOUNT_EMAIL not set, signed urls disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:          cfg,
		Auth:         authClient,
		Profiles:     userRepo,
		GymSvc:       gymSvc,
		TrainerSvc:   trainerSvc,
		MemberSvc:    memberSvc,
		AttendSvc:    attendSvc,
		AnalyticsSvc: analyticsSvc,
		RetentionSvc: retentionSvc,
		DeviceSvc:    deviceSvc,
		WorkoutSvc:   workoutSvc,
		Signer:       signer,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"algoarena/internal/ai"
	"algoarena/internal/api"
	"algoarena/internal/app/service"
	"algoarena/internal/app/worker"
	"algoarena/internal/common/security"
	"algoarena/internal/domain/repository"
	"algoarena/internal/judge"
	"algoarena/internal/platform/config"
	"algoarena/internal/platform/database"
	"algoarena/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	rdb := queue.ConnectRedis()
	defer rdb.Close()

	jobQueue := queue.NewRedisQueue(rdb, config.AppConfig.JudgeQueueName)
	runResults := queue.NewRedisRunResultStore(rdb, time.Duration(config.AppConfig.RunResultTTLSeconds)*time.Second)

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, userRepo, jobQueue, runResults)
	userService := service.NewUserService(userRepo)

	var providers []ai.Provider
	for _, pc := range config.AppConfig.AIProviders {
		providers = append(providers, ai.NewHTTPProvider(pc.Name, pc.BaseURL, pc.APIKey, pc.Model))
	}
	aiRouter := ai.NewRouter(providers, config.AppConfig.AIRPMBudget)

	// 7. Initialize Judge Workers (as goroutines)
	sandbox := judge.NewSandboxClient(config.AppConfig.SandboxURL, config.AppConfig.SandboxAPIKey)
	judgeWorker := worker.NewJudgeWorker(jobQueue, runResults, sandbox, userRepo, problemRepo, submissionRepo)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	for i := 0; i < config.AppConfig.WorkerCount; i++ {
		go judgeWorker.Start(workerCtx)
	}
	fmt.Printf("Started %d judge worker(s).\n", config.AppConfig.WorkerCount)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, problemService, submissionService, userService, aiRouter)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal workers to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and workers stopped gracefully.")
}

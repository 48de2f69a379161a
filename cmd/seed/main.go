package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"algoarena/internal/app/service"
	"algoarena/internal/domain/repository"
	"algoarena/internal/platform/config"
	"algoarena/internal/platform/database"
)

// Seeds the problem catalog from a JSON file of CreateProblemRequest
// objects. Existing problems with the same slug cause a conflict error and
// are skipped.
func main() {
	file := flag.String("file", "problems.json", "path to the problems JSON file")
	flag.Parse()

	config.Load()
	database.Connect()
	defer database.Close()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Could not read %s: %v", *file, err)
	}

	var requests []service.CreateProblemRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		log.Fatalf("Could not parse %s: %v", *file, err)
	}

	problemRepo := repository.NewPgProblemRepository(database.DB)
	problemService := service.NewProblemService(problemRepo)

	ctx := context.Background()
	seeded := 0
	for _, req := range requests {
		problem, err := problemService.CreateProblem(ctx, req)
		if err != nil {
			log.Printf("WARN: Skipping %q: %v", req.Title, err)
			continue
		}
		log.Printf("INFO: Seeded problem %s (%s).", problem.Title, problem.Slug)
		seeded++
	}
	log.Printf("Done: %d/%d problems seeded.", seeded, len(requests))
}

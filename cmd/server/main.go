package main

import (
	"log"
	"net/http"
	"os"

	"kazi_connect/internal/config"
	"kazi_connect/internal/controllers"
	"kazi_connect/internal/geofence"
	"kazi_connect/internal/logger"
	"kazi_connect/internal/matching"
	"kazi_connect/internal/middleware"
	"kazi_connect/internal/routes"
	"kazi_connect/internal/storage"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Optional category-table override for the skill matcher
	loadSkillCategories()

	// Geofence tracker backed by the persistent zone store
	tracker, err := geofence.NewTracker(storage.NewGormZoneStore(config.GetDB()))
	if err != nil {
		log.Fatalf("failed to initialize geofence tracker: %v", err)
	}
	controllers.InitTracker(tracker)

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	log.Printf("🚀 Server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}

// loadSkillCategories swaps in a JSON category table when
// SKILL_CATEGORIES_FILE is set. The built-in table stays in place otherwise.
func loadSkillCategories() {
	path := os.Getenv("SKILL_CATEGORIES_FILE")
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open skill categories file: %v", err)
	}
	defer f.Close()

	cats, err := matching.LoadCategories(f)
	if err != nil {
		log.Fatalf("failed to parse skill categories file: %v", err)
	}
	matching.SetDefaultCategories(cats)
}

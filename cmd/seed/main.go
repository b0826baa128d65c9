// Command seed populates the database with demo data for development.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	extraBlogs := flag.Int("extra", 0, "Number of extra randomized blogs to generate")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Path to a YAML fixture to load after the demo data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		ExtraBlogs:  *extraBlogs,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if *fixture != "" {
		if err := seed.LoadFixture(db, *fixture); err != nil {
			log.Fatalf("Fixture loading failed: %v", err)
		}
		log.Printf("Fixture %s loaded", *fixture)
	}
}

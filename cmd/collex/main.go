package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/flexidx/collex/api"
	"github.com/flexidx/collex/config"
	"github.com/flexidx/collex/engine"
	"github.com/flexidx/collex/internal/metrics"
	"github.com/flexidx/collex/store"
)

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		port       = flag.String("port", "8080", "Port to run the server on")
		dataDir    = flag.String("data-dir", "./collex_data", "Directory to store collection data")
		schemasArg = flag.String("schemas", "", "Path to a YAML file declaring collections to create at startup")
		memOnly    = flag.Bool("mem-only", false, "Run with an in-memory store only; nothing is persisted to disk")
	)

	flag.Parse()

	if *help {
		fmt.Printf("collex - a typo-tolerant, in-memory document search engine\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                              # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000                  # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --data-dir /tmp/collex       # Use a custom data directory\n", os.Args[0])
		fmt.Printf("  %s --schemas ./collections.yaml # Bootstrap collections at startup\n", os.Args[0])
		return
	}

	if *version {
		fmt.Printf("collex v1.0.0\n")
		return
	}

	backing, err := openBacking(*dataDir, *memOnly)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	manager, err := engine.Open(backing)
	if err != nil {
		log.Fatalf("reconstruct collections: %v", err)
	}

	if *schemasArg != "" {
		if err := bootstrapSchemas(manager, *schemasArg); err != nil {
			log.Fatalf("bootstrap schemas: %v", err)
		}
	}

	m := metrics.New()

	router := gin.Default()
	api.SetupRoutes(router, manager, m)

	log.Printf("Starting server on port %s...", *port)
	if err := router.Run(":" + *port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openBacking(dataDir string, memOnly bool) (store.Store, error) {
	if memOnly {
		log.Printf("running with an in-memory store; nothing will be persisted")
		return store.NewMemStore(), nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	log.Printf("Using data directory: %s", dataDir)
	return store.OpenFileStore(dataDir + "/collex.gob")
}

// bootstrapSchemas reads a YAML document of collection schemas and creates
// any that don't already exist. A schema already present from a prior run
// is left untouched rather than re-created.
func bootstrapSchemas(manager *engine.Manager, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schemas file: %w", err)
	}

	var doc struct {
		Collections []config.CollectionSchema `yaml:"collections"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse schemas file: %w", err)
	}

	existing := make(map[string]bool)
	for _, name := range manager.List() {
		existing[name] = true
	}

	for _, schema := range doc.Collections {
		if existing[schema.Name] {
			log.Printf("collection %q already exists, skipping bootstrap", schema.Name)
			continue
		}
		if _, err := manager.Create(schema); err != nil {
			return fmt.Errorf("create collection %q: %w", schema.Name, err)
		}
		log.Printf("bootstrapped collection %q", schema.Name)
	}
	return nil
}

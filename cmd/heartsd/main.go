// Command heartsd runs the heartsgammon API server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yourusername/heartsgammon/internal/config"
	"github.com/yourusername/heartsgammon/pkg/api"
)

const version = "0.1.0"

func main() {
	log.SetPrefix("[HEARTSD] ")

	// Environment first, flags override.
	cfg := api.DefaultConfig()
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.StringVar(&cfg.Host, "host", cfg.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	flag.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "HTTP idle timeout")
	flag.IntVar(&cfg.MaxFastWorkers, "fast-workers", cfg.MaxFastWorkers, "Max concurrent engine calls")
	flag.IntVar(&cfg.MaxSlowWorkers, "slow-workers", cfg.MaxSlowWorkers, "Max concurrent audits and simulations")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for session dice (0 = random)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("heartsd v%s\n", version)
		os.Exit(0)
	}

	if cfg.Seed == 0 {
		seed, err := config.NewSeed()
		if err != nil {
			log.Fatalf("Failed to seed dice: %v", err)
		}
		cfg.Seed = seed
	}
	log.Printf("heartsd v%s (seed %d)", version, cfg.Seed)

	server := api.NewServer(cfg, version)
	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

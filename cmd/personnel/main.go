package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/app"
)

const usage = `usage: personnel [command]

commands:
  serve               run the HTTP server (default)
  migrate             apply database migrations and exit
  seed -file <path>   create the accounts listed in a YAML file
`

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	switch cmd {
	case "serve":
		application, err := app.New(cfg)
		if err != nil {
			log.Fatalf("failed to initialize application: %v", err)
		}
		if err := application.Run(); err != nil {
			log.Fatalf("application error: %v", err)
		}

	case "migrate":
		if err := app.Migrate(context.Background(), cfg); err != nil {
			log.Fatalf("migrate failed: %v", err)
		}

	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		file := fs.String("file", "seed.yaml", "YAML file listing the accounts to create")
		_ = fs.Parse(args)

		if _, err := app.Seed(context.Background(), cfg, *file); err != nil {
			log.Fatalf("seed failed: %v", err)
		}

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jewelry/catalog/internal/config"
	"jewelry/catalog/internal/container"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const usage = `Usage: catalog [--config FILE] <command> [flags]

Commands:
  tree [--search TERM] [--expand-all]      show the category tree
  show ID                                  print one category
  save --file FILE [--id ID]               create, or update ID, from a YAML/JSON file
  rename ID NAME                           rename a category inline
  occasion add ID NAME                     append an occasion
  occasion remove ID INDEX                 remove an occasion
  occasion bind ID INDEX [PRODUCT_ID]      bind (or unbind) an occasion's product
  upload --id ID --field FIELD FILE        upload an image into image|icon|banner
  prices                                   follow the live metal price feed
  prices --history METAL PURITY [--limit N]  print stored quotes, newest first
  watch                                    follow category changes and prices
`

func main() {
	global := flag.NewFlagSet("catalog", flag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.String("config", "", "path to the config file (default ./config.yaml)")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	err = run(ctx, app, global.Arg(0), global.Args()[1:])
	app.Close()
	if err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func setupLogging(cfg config.LogConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

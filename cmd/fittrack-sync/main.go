package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milassn/fitness-tracker/internal/config"
	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/remote"
	"github.com/milassn/fitness-tracker/internal/store"
	syncengine "github.com/milassn/fitness-tracker/internal/sync"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single sync pass and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fittrack-sync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	replica, err := store.Open(cfg.Client.DataDir, log)
	if err != nil {
		log.Error("failed to open local replica", "error", err)
		os.Exit(1)
	}
	defer replica.Close()

	client := remote.New(cfg.Client.ServerURL, cfg.Client.APIKey)

	ctx := context.Background()
	user, err := client.CurrentUser(ctx)
	if err != nil {
		log.Error("failed to reach server", "error", err)
		os.Exit(1)
	}
	if user == nil {
		log.Error("api key rejected by server")
		os.Exit(1)
	}
	log.Info("signed in", "user", user.Email)

	engine := syncengine.New(replica, client, user.ID, log)
	if cfg.Client.SyncInterval > 0 {
		engine.SetInterval(time.Duration(cfg.Client.SyncInterval) * time.Second)
	}

	if *once {
		engine.SyncAll(ctx)
		log.Info("sync pass complete")
		return
	}

	// First run on this machine starts from the server's state.
	if replica.Load(models.TableMesocycles) == nil {
		if err := engine.LoadUserData(ctx); err != nil {
			log.Error("initial data load failed", "error", err)
			os.Exit(1)
		}
	}

	engine.StartAutoSync(ctx)
	defer engine.StopAutoSync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
}

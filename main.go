package main

import (
	"fmt"

	"github.com/wfunc/bomberman/config"
	"github.com/wfunc/bomberman/logger"
	"github.com/wfunc/bomberman/monitor"
	"github.com/wfunc/bomberman/persistence"
	"github.com/wfunc/bomberman/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Log.File != "" {
		logger.InitWithFile(cfg.Log.File)
	}
	defer logger.Sync()

	// Optional match archive
	var db persistence.Database
	if cfg.Database.Enabled {
		db, err = openDatabase(cfg)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Log.Info("Match archive enabled.")
	}

	// Metrics endpoint
	var mon *monitor.Monitor
	if cfg.Server.MetricsAddress != "" {
		mon = monitor.NewMonitor("bomberman")
		mon.StartServer(cfg.Server.MetricsAddress)
		logger.Log.Infof("Metrics listening on %s", cfg.Server.MetricsAddress)
	}

	// Start coordinator
	gameServer := server.NewGameServer(cfg, db, mon)
	logger.Log.Infof("Starting bomberman coordinator on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openDatabase(cfg *config.Config) (persistence.Database, error) {
	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "", "gorm":
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "pq":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

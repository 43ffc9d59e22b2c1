package main

import (
	"math/big"

	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/database"
	"github.com/blues/sfs/internal/event"
	"github.com/blues/sfs/internal/ledger"
	"github.com/blues/sfs/internal/logger"
	"github.com/blues/sfs/internal/router"
	"github.com/blues/sfs/internal/scheduler"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	setupLogger(cfg.Log)
	defer logger.Sync()

	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	if !common.IsHexAddress(cfg.Ledger.Owner) {
		logger.Fatal("Invalid ledger owner address: %s", cfg.Ledger.Owner)
	}
	owner := common.HexToAddress(cfg.Ledger.Owner)
	engine := ledger.NewEngine(owner, nil)

	if cfg.Ledger.RewardsPoolFund > 0 {
		fund := new(big.Int).Mul(big.NewInt(cfg.Ledger.RewardsPoolFund), ledger.Ether())
		if err := engine.FundRewardsPool(owner, fund); err != nil {
			logger.Fatal("Failed to fund rewards pool: %v", err)
		}
		logger.Info("Rewards pool funded with %d tokens", cfg.Ledger.RewardsPoolFund)
	}

	monitor, err := event.NewMonitor(engine, db, cfg.Projector)
	if err != nil {
		logger.Fatal("Failed to create event monitor: %v", err)
	}
	if err := monitor.Start(); err != nil {
		logger.Fatal("Failed to start event monitor: %v", err)
	}
	defer monitor.Stop()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Setup(engine, db, cfg)

	manager := scheduler.Start(engine, db, cfg)
	defer manager.Stop()

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	if cfg.Output == "file" && cfg.File != "" {
		l, err := logger.NewWithFileRotation(level, cfg.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
		return
	}

	l, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}

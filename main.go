package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/zjzjzjzj1874/jinzhangben/internal/classifier"
	"github.com/zjzjzjzj1874/jinzhangben/internal/config"
	"github.com/zjzjzjzj1874/jinzhangben/internal/database"
	"github.com/zjzjzjzj1874/jinzhangben/internal/logger"
	"github.com/zjzjzjzj1874/jinzhangben/internal/router"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// classification rules: external file overrides built-in tables
	rules := classifier.Default()
	if cfg.Classifier.RulesFile != "" {
		rules, err = classifier.Load(cfg.Classifier.RulesFile)
		if err != nil {
			log.Fatalf("load classifier rules: %v", err)
		}
	}

	// setup router
	r := router.SetupRouter(cfg, db, rules, zlog)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	zlog.Info().Str("addr", addr).Msg("服务启动")
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kochabx/authsvc/log"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file; empty uses defaults and environment")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "authsvc: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, loader, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := log.NewFromConfig(cfg.Log)
	if err != nil {
		return err
	}
	log.SetGlobalLogger(logger)
	defer logger.Close()

	// 级别由 zerolog 全局级别控制，以便热更新
	level := logger.GetLevel()
	logger.Logger = logger.Level(zerolog.TraceLevel)
	log.SetLevel(level)

	// 组件使用启动时的配置副本，热更新只调整日志级别
	frozen := *cfg
	loader.OnChange(func() {
		if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && level != zerolog.GlobalLevel() {
			log.SetLevel(level)
			logger.Info().Str("level", level.String()).Msg("log level updated")
		}
	})
	if err := loader.Watch(); err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	application, err := build(&frozen, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}

	logger.Info().Str("addr", frozen.Server.Addr).Msg("authsvc starting")
	return application.Start()
}

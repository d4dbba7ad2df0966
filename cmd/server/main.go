package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/urgekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/dmitrijs2005/urgekeeper/internal/server"
	"github.com/dmitrijs2005/urgekeeper/internal/server/auth"
	"github.com/dmitrijs2005/urgekeeper/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	if cfg.IssueTokenFor != "" {
		token, err := auth.GenerateToken(cfg.IssueTokenFor, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	zl, err := logging.NewZapProductionLogger(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewZapLogger(zl)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}

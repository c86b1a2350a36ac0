package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/exchora/auditchain/internal/audit"
	"github.com/exchora/auditchain/internal/common"
	"github.com/exchora/auditchain/internal/config"
	"github.com/exchora/auditchain/internal/handlers/api"
	"github.com/exchora/auditchain/internal/middlewares"
	"github.com/exchora/auditchain/params"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli/v2"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
	gitTag    string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "auditchain - tamper-evident audit log service"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				version := gitTag
				if version == "" {
					version = "dev"
				}
				fmt.Printf("%s (%s %s)\n", version, gitCommit, gitDate)
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func setupAPIRoutes(router fiber.Router, jwtSecret string, auditLog *audit.Log) {
	auditHandler := api.NewAuditHandler(auditLog)

	group := router.Group("/api/audit")
	group.Use(middlewares.NewActorExtractor(jwtSecret))
	group.Post("/entries", auditHandler.PostEntry)
	group.Get("/entries", auditHandler.GetEntries)
	group.Get("/entries/:id", auditHandler.GetEntry)
	group.Delete("/entries", auditHandler.DeleteEntries)
	group.Get("/chain/verify", auditHandler.GetChainVerify)
	group.Get("/statistics", auditHandler.GetStatistics)
}

func run(ctx *cli.Context) error {
	config, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(config.Debug || ctx.IsSet(debugFlag.Name))

	production := config.Environment == params.ProductionEnvName
	auditLog := audit.NewLog(config.Audit.Secret, production)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router, config.JWT.Secret, auditLog)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go common.StartHealthCheckServer(healthCheckCtx, done, auditLog)
	defer func() {
		term()
		<-done
	}()

	slog.Info("Starting audit log service", "environment", config.Environment, "listenAddr", config.ListenAddr)
	return router.Listen(config.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

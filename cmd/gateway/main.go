// Package main is the entry point for the agent gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agenticmesh/agentgw/internal/config"
	"github.com/agenticmesh/agentgw/internal/health"
	"github.com/agenticmesh/agentgw/internal/observability"
	"github.com/agenticmesh/agentgw/internal/proxy"
	"github.com/agenticmesh/agentgw/internal/registry"
	"github.com/agenticmesh/agentgw/internal/resolver"
	"github.com/agenticmesh/agentgw/internal/secrets"
	"github.com/agenticmesh/agentgw/internal/server"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	runGateway(app, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("AGENTGW_CONFIG_PATH", "configs/gateway.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("AGENTGW_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("AGENTGW_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("agentgw version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting agentgw",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.Int("httpPort", cfg.HTTPPort),
		observability.String("secretsProvider", cfg.SecretsProvider),
		observability.String("defaultNamespace", cfg.DefaultNamespace),
	)

	return cfg
}

// application holds all application components.
type application struct {
	server          *server.Server
	registry        registry.Registry
	secretsProvider secrets.Provider
	healthChecker   *health.Checker
	config          *config.Config
}

// initApplication initializes all application components.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	zapLogger := observability.Zap(logger)

	kubeClient, err := registry.NewKubeClient()
	if err != nil {
		logger.Fatal("failed to create kubernetes client", observability.Error(err))
	}

	reg, err := registry.NewKubeRegistry(&registry.KubeRegistryConfig{
		Client:           kubeClient,
		DefaultNamespace: cfg.DefaultNamespace,
		Logger:           zapLogger,
	})
	if err != nil {
		logger.Fatal("failed to create registry", observability.Error(err))
	}

	secretsProvider, err := secrets.NewProviderFromConfig(cfg, kubeClient, zapLogger)
	if err != nil {
		logger.Fatal("failed to create secrets provider", observability.Error(err))
	}

	res := resolver.New(reg, secretsProvider, resolver.WithLogger(logger))
	fwd := proxy.NewForwarder(cfg.UpstreamDialTimeout, proxy.WithLogger(logger))

	healthChecker := health.NewChecker(version)
	healthChecker.RegisterCheck("registry", reg.HealthCheck)
	healthChecker.RegisterCheck("secrets", secretsProvider.HealthCheck)

	handler := server.NewProxyHandler(res, fwd, reg, logger)
	srv := server.NewServer(cfg, handler, healthChecker, logger)

	return &application{
		server:          srv,
		registry:        reg,
		secretsProvider: secretsProvider,
		healthChecker:   healthChecker,
		config:          cfg,
	}
}

// runGateway runs the gateway and handles shutdown.
func runGateway(app *application, logger observability.Logger) {
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", observability.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.secretsProvider.Close(); err != nil {
		logger.Error("failed to close secrets provider", observability.Error(err))
	}

	logger.Info("gateway stopped")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

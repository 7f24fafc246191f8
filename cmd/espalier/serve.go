package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aretw0/espalier/internal/adapters"
	httpadapter "github.com/aretw0/espalier/pkg/adapters/http"
	redisadapter "github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/observability"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// serveConfig is the YAML shape accepted by --config.
type serveConfig struct {
	Addr  string `yaml:"addr"`
	Store string `yaml:"store"` // memory, file or redis
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Lock     bool   `yaml:"lock"`
	} `yaml:"redis"`
}

func loadServeConfig(path string) (serveConfig, error) {
	cfg := serveConfig{
		Addr:  ":8080",
		Store: "memory",
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Store == "" {
		cfg.Store = "memory"
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session HTTP server",
	Long:  `Starts the espalier engine in server mode, exposing sessions and message dispatch over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadServeConfig(configPath)
		if err != nil {
			fmt.Printf("Config error: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		reg, err := newDemoRegistry()
		if err != nil {
			fmt.Printf("Error building registry: %v\n", err)
			os.Exit(1)
		}

		sessionOpts := []session.Option{session.WithLogger(slog.Default())}
		switch cfg.Store {
		case "memory":
			// Sessions live only as long as the process.
		case "file":
			dir, _ := cmd.Flags().GetString("dir")
			storePath := filepath.Join(dir, ".espalier", "sessions")
			sessionOpts = append(sessionOpts, session.WithStore(adapters.NewFileStore(storePath)))
		case "redis":
			client := backend.NewClient(&backend.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			sessionOpts = append(sessionOpts, session.WithStore(redisadapter.NewFromClient(client)))
			if cfg.Redis.Lock {
				var locker ports.Locker = redisadapter.NewLocker(client, "espalier:")
				sessionOpts = append(sessionOpts, session.WithLocker(locker))
			}
		default:
			fmt.Printf("Unknown store %q. Supported: memory, file, redis\n", cfg.Store)
			os.Exit(1)
		}

		sessions := session.NewManager(sessionOpts...)

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		apiHandler := httpadapter.NewHandler(sessions, reg,
			httpadapter.WithLogger(slog.Default()),
			httpadapter.WithHooks(metrics.Hooks()),
		)

		r := chi.NewRouter()
		r.Handle("/metrics", promhttp.Handler())
		r.Mount("/", apiHandler)

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: r,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Espalier Server on %s (store: %s)\n", srv.Addr, cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Espalier Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}

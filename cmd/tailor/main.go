// Package main is the tailor service entry point.
package main

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tailorci/tailor/internal/config"
	"github.com/tailorci/tailor/internal/github"
	"github.com/tailorci/tailor/internal/logging"
	"github.com/tailorci/tailor/internal/metrics"
	"github.com/tailorci/tailor/internal/server"
	"github.com/tailorci/tailor/internal/worker"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "tailor",
	Short:         "Validate pull requests against repository-defined rules",
	Long:          "tailor receives GitHub pull request webhooks, evaluates the repository's rule policy against each pull request and reports the verdict as a commit status.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfg.Address, "address", "a", "0.0.0.0", "interface to bind the HTTP server to")
	rootCmd.Flags().IntVarP(&cfg.Port, "port", "p", 8080, "port to bind the HTTP server to")
	rootCmd.Flags().StringVar(&cfg.ServerAddress, "server-address", "", "public host:port used in status links (defaults to the bind address)")
	rootCmd.Flags().StringVar(&cfg.Templates, "templates", "templates", "directory holding HTML templates")
	rootCmd.Flags().StringVar(&cfg.Token, "token", "", "GitHub API token")
	rootCmd.Flags().CountVarP(&cfg.Verbosity, "verbose", "v", "increase log verbosity (repeatable)")
}

func run() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logging.Setup(cfg.Verbosity)

	registry := prometheus.NewRegistry()
	m, err := metrics.Register(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	templates, err := template.ParseGlob(filepath.Join(cfg.Templates, "*.html"))
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	client := github.NewClient(cfg.Token, log)
	w := worker.Spawn(client, cfg.ServerAddress, log, m)
	defer w.Close()

	s := server.New(w, templates, registry, log)
	log.Info("tailor listening", "addr", cfg.ListenAddr())
	return http.ListenAndServe(cfg.ListenAddr(), s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tailor: %v\n", err)
		if config.IsConfigError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

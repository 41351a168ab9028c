package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthanhphan/go-chord-kv-store/internal/experiment"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/app"
	"github.com/anthanhphan/go-chord-kv-store/internal/node/config"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	host       string
	port       int
	bootstrap  string

	expMode          string
	expNumNodes      int
	expBasePort      int
	expNumOps        int
	expChurnInterval time.Duration
	expBinary        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chordkv",
		Short: "A self-organizing replicated key-value store",
		Long: `Chordkv runs a key-value node that organizes itself into a ring with
its peers, replicates writes, and resolves conflicts by last-writer-wins.`,
	}

	nodeCmd := &cobra.Command{
		Use:   "node",
		Short: "Run a single node",
		RunE:  runNode,
	}
	nodeCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")
	nodeCmd.Flags().StringVar(&host, "host", "", "Bind hostname (overrides config)")
	nodeCmd.Flags().IntVar(&port, "port", 0, "Bind port (overrides config)")
	nodeCmd.Flags().StringVar(&bootstrap, "bootstrap", "", "Address of a live ring member; empty starts a new ring")

	expCmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run a multi-node scale or churn experiment",
		RunE:  runExperiment,
	}
	expCmd.Flags().StringVar(&expMode, "mode", "scale", "Experiment mode: scale or churn")
	expCmd.Flags().IntVar(&expNumNodes, "num-nodes", 5, "Number of nodes to start")
	expCmd.Flags().IntVar(&expBasePort, "base-port", 5000, "First node port; the rest are consecutive")
	expCmd.Flags().IntVar(&expNumOps, "num-ops", 100, "Number of PUT/GET operation pairs")
	expCmd.Flags().DurationVar(&expChurnInterval, "churn-interval", 5*time.Second, "Time between churn events (churn mode only)")
	expCmd.Flags().StringVar(&expBinary, "binary", "", "Node binary to spawn (defaults to this executable)")

	rootCmd.AddCommand(nodeCmd, expCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runNode(cmd *cobra.Command, args []string) error {
	application, err := app.New(configPath, app.Overrides{
		Host:      host,
		Port:      port,
		Bootstrap: bootstrap,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	return application.Run()
}

func runExperiment(cmd *cobra.Command, args []string) error {
	logger.InitLogger(&config.DefaultConfig().Logger)

	cfg := experiment.Config{
		NumNodes: expNumNodes,
		BasePort: expBasePort,
		NumOps:   expNumOps,
		Binary:   expBinary,
	}
	switch expMode {
	case "scale":
	case "churn":
		cfg.ChurnInterval = expChurnInterval
	default:
		return fmt.Errorf("unknown mode %q, want scale or churn", expMode)
	}

	h, err := experiment.NewHarness(cfg)
	if err != nil {
		return err
	}
	return h.Run(context.Background())
}

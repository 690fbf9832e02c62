package main

import (
	"fmt"
	"os"

	"InsiderPulse/internal/di"
	"InsiderPulse/internal/usecase"

	"github.com/spf13/cobra"
)

var (
	pubFile    string
	pubBackend string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Import a JSON file of normalized transactions",
	Long: `Read a JSON object or array of normalized transactions and send it to
the ingest topic, or straight into the store with --backend store.

Examples:
  insiderpulse publish --file seed.json
  insiderpulse publish --file seed.json --backend store`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVar(&pubFile, "file", "", "transactions file (required)")
	publishCmd.Flags().StringVar(&pubBackend, "backend", usecase.BackendKafka, "kafka|store")
	_ = publishCmd.MarkFlagRequired("file")
}

func runPublish(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	switch pubBackend {
	case usecase.BackendKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka backend needs kafka.brokers")
		}
	case usecase.BackendStore:
		// without brokers the processor writes to the store
		cfg.Kafka.Brokers = nil
	default:
		return fmt.Errorf("unknown --backend %q", pubBackend)
	}

	b, err := os.ReadFile(pubFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", pubFile, err)
	}
	txs, err := usecase.DecodeTransactions(b)
	if err != nil {
		return err
	}

	p, cleanup, err := di.InitializeProcessor(cfg)
	if err != nil {
		return fmt.Errorf("processor initialization failed: %w", err)
	}
	defer cleanup()

	n, err := p.ProcessBatch(cmd.Context(), txs)
	if err != nil {
		return fmt.Errorf("published %d of %d: %w", n, len(txs), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %d transactions via %s\n", n, pubBackend)
	return nil
}

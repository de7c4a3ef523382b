package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ddtft/internal/config"
	"ddtft/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ddtft",
	Short: "ddtft - parse DDT, fatture and note di credito into structured records",
	Long: `ddtft reads the text of transport documents (DDT), invoices and credit
notes issued by the seller and turns each one into a structured record:
document number and date, client, delivery address, line items and totals.

Every record carries diagnostics and per-field provenance so that doubtful
extractions can be reviewed before they are used.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("ddtft executed without a command")

		fmt.Println("ddtft - document parser")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the validated configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

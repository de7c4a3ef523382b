package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ddtft/internal/logger"
	"ddtft/internal/lookup"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [yaml-file]",
	Short: "Validate and show the reference dataset",
	Long: `Load the reference dataset used by the parser, validate it and print a
summary: seller identity, known clients, order addresses and carriers.

Without an argument the file from DDTFT_LOOKUP_FILE is used, or the embedded
dataset when that is not set.`,
	Example: `  # Show the embedded dataset
  ddtft lookup

  # Validate an edited dataset before deploying it
  ddtft lookup ./clienti.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Bool("clients", false, "List every known client")
}

func runLookup(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("lookup")

	listClients, _ := cmd.Flags().GetBool("clients")

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.LookupFile
	}

	ds, err := loadDataset(path, log)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "embedded"
	}

	fmt.Printf("Dataset:        %s (version %s)\n", source, ds.Version)
	fmt.Printf("Seller:         %s  P.IVA %s\n", ds.Seller.Name, ds.Seller.VATNumber)
	fmt.Printf("Default VAT:    %d%%\n", ds.DefaultVATRate)
	fmt.Printf("Clients:        %d\n", len(ds.Clients))
	fmt.Printf("Order addresses: %d\n", len(ds.OrderAddresses))
	fmt.Printf("Carriers:       %s\n", strings.Join(ds.Carriers, ", "))

	if listClients {
		fmt.Println()
		if err := printClients(ds); err != nil {
			return fmt.Errorf("failed to print clients: %w", err)
		}
	}

	log.Info().
		Str("dataset", source).
		Str("version", ds.Version).
		Msg("Lookup dataset is valid")
	return nil
}

func printClients(ds *lookup.Dataset) error {
	clients := append([]lookup.Client(nil), ds.Clients...)
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tDISPLAY NAME\tDELIVERY ADDRESS")
	for _, c := range clients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dash(c.Code), c.Name, ds.DisplayName(c.Name), dash(c.DeliveryAddress))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

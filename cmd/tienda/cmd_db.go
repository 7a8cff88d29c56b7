package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/tienda/internal/product"
)

// tienda migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the bootstrap schema (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := boot()
		gw, err := openGateway(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer gw.Close()

		fmt.Printf("Migrating %s database…\n", gw.Driver)
		if err := gw.Migrate(cmd.Context()); err != nil {
			return err
		}
		color.Green("✔ schema is up to date")
		return nil
	},
}

// tienda seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog when no products exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := boot()
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		items := product.SampleCatalog()
		created, err := product.Seed(cmd.Context(), product.NewRepo(a.gw), items)
		if err != nil {
			return err
		}
		if len(created) == 0 {
			color.Yellow("catalog already has products, nothing to do")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
		for _, p := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		color.Green("✔ seeded %d products", len(created))
		return nil
	},
}

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// tienda account disable|enable <username>
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := boot()
			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.users.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			color.Green("✔ %s: active=%t", args[0], active)
			return nil
		},
	}
}

func init() {
	accountCmd.AddCommand(
		setActiveCmd("disable", "Disable an account; its tokens stop working immediately", false),
		setActiveCmd("enable", "Re-enable a disabled account", true),
	)
}

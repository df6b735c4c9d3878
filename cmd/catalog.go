package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"rebang/di"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the effective menu as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		menu, err := di.NewMenuUsecase(cfg)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), menu.Menu())
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the collaborator routes referenced by the menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		menu, err := di.NewMenuUsecase(cfg)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), menu.Routes())
	},
}

func init() {
	rootCmd.AddCommand(menuCmd, routesCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

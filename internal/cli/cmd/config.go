package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/folio/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the active config file path",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(GetApp().ConfigMgr.GetConfigFile())
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema for the config file",
	RunE: func(_ *cobra.Command, _ []string) error {
		schema, err := config.Schema()
		if err != nil {
			return err
		}
		fmt.Println(string(schema))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}

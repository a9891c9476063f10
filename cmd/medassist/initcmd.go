package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicboard/medassist/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .medassist.kdl in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileName
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

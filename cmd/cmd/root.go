package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ntfsdig/ntfsdig/internal/env"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - NTFS Master File Table parser and recovery tool",
	}

	rootCmd.AddCommand(DefineScanCommand())
	rootCmd.AddCommand(DefineMountCommand())
	rootCmd.AddCommand(DefineMergeCommand())

	return rootCmd.Execute()
}

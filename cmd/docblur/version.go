package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/menta2k/docblur"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docblur %s\n", docblur.GetVersion())
		fmt.Printf("  Go:      %s\n", runtime.Version())
		fmt.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

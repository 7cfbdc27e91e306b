// Command edgeads runs the flag-gated ad injection hooks behind an HTTP edge
// runtime, and can evaluate the enable-ads flag for a single simulated request.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "edgeads",
	Short:        "LaunchDarkly-gated ad injection at the edge",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

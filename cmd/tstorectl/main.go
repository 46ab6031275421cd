// Command tstorectl is an administrative CLI over a tstore DataSource:
// dataset creation/resolution and a gated database drop.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

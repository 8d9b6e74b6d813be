// ABOUTME: Entry point for the acreage CLI
// ABOUTME: Executes the root cobra command and maps errors to exit status

package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command trends runs the indicator trend pipeline from the command line.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional for the CLI; flags and the environment still apply.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

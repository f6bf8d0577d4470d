// Command skill-matcher scores how well a candidate's skills match job descriptions.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/skill-matcher/cmd"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/smarthealth/internal/cli"
)

var (
	version = "dev" // Overwritten at build time
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/rebfix/internal/app"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: installation failed unexpectedly: %v\n", r)
			fmt.Fprintln(os.Stderr, "Please check the log file for more details.")
			os.Exit(1)
		}
	}()

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

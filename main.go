package main

import (
	"os"

	"github.com/meteohub/weatherstation/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

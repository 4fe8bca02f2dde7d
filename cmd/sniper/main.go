package main

import (
	"os"

	"github.com/9to5ninja-projects/cryptosniper/cmd/sniper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

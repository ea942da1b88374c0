package main

import (
	"os"

	"github.com/unionhub/unionhub-api/cmd/admin/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

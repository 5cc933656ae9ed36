package main

import (
	"os"

	"github.com/Lethinkj/clan-quiz-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

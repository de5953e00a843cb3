package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/arklim/riskdash-client/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Printf("riskdash: %v", err)
		os.Exit(1)
	}
}

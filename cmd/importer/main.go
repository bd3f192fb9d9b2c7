package main

import (
	"github.com/JonMunkholm/lineimport/internal/cli"
	_ "github.com/JonMunkholm/lineimport/internal/formats" // Register all formats
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Overload()

	cli.Execute()
}

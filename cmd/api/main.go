package main

import (
	"fmt"
	"os"

	"github.com/Seyramize/BE-sub000/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine in deployed environments, where configuration
	// arrives through real environment variables.
	_ = godotenv.Load()

	err := app.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

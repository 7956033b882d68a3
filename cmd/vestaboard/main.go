package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	appLog "vestacal/internal/log"
	"vestacal/internal/vestaboard"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vestaboard <text-file>")
		os.Exit(1)
	}

	_ = godotenv.Load()

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		appLog.Error("failed to read file", err, "path", os.Args[1])
		os.Exit(1)
	}

	client := vestaboard.NewClient(os.Getenv("VESTABOARD_READ_WRITE_KEY"))
	if !client.IsConfigured() {
		appLog.Error("VESTABOARD_READ_WRITE_KEY is not set", nil)
		os.Exit(1)
	}

	if err := client.SendText(context.Background(), strings.TrimSpace(string(data))); err != nil {
		appLog.Error("failed to update board", err)
		os.Exit(1)
	}
	fmt.Println("Vestaboard updated successfully!")
}

package main

import (
	"log"

	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/internal/app"
	"github.com/joho/godotenv"
)

const configPath = "config.yml"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatal(err)
	}
}

package initializers

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if os.Getenv("SECRET") == "" {
		log.Fatal("SECRET environment variable is required")
	}
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	// All variables
	GO_ENV   string
	PORT     int
	DB_PATH  string
	BLOB_DIR string
	// Default profile created at first launch
	DEFAULT_USER_NAME  string
	DEFAULT_USER_EMAIL string
	// Redis Configuration (optional read cache)
	REDIS_URL string
	// Content provider (OpenAI-compatible endpoint)
	OPENAI_API_KEY  string
	OPENAI_BASE_URL string
	OPENAI_MODEL    string
	// Background jobs
	CRON_ENABLED     bool
	SNAPSHOT_ENABLED bool
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/study-assistant.db"
	}

	blobDir := os.Getenv("BLOB_DIR")
	if blobDir == "" {
		blobDir = "data/blobs"
	}

	userName := os.Getenv("DEFAULT_USER_NAME")
	if userName == "" {
		userName = "Student"
	}

	userEmail := os.Getenv("DEFAULT_USER_EMAIL")
	if userEmail == "" {
		userEmail = "student@localhost"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:   os.Getenv("GO_ENV"),
		PORT:     port,
		DB_PATH:  dbPath,
		BLOB_DIR: blobDir,
		// Default profile
		DEFAULT_USER_NAME:  userName,
		DEFAULT_USER_EMAIL: userEmail,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Content provider
		OPENAI_API_KEY:  os.Getenv("OPENAI_API_KEY"),
		OPENAI_BASE_URL: os.Getenv("OPENAI_BASE_URL"),
		OPENAI_MODEL:    model,
		// Background jobs (default enabled)
		CRON_ENABLED:     os.Getenv("CRON_ENABLED") != "false",
		SNAPSHOT_ENABLED: os.Getenv("SNAPSHOT_ENABLED") != "false",
	}

	return envVariables, nil
}

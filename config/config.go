package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS    = ""             // e.g. "example.com,example2.com"
	MYSQL_DSN      = ""             // MySQL will be used if this is set
	SQLITE_FILE    = "scrapbook.db" // SQLite will be used if MYSQL_DSN is not configured
	BIND_ADDRESS   = "0.0.0.0:8080"
	DEBUG_MODE     = true
	SESSION_KEY    = "this is a long key"
	SESSION_MAXAGE = 365 * 86400 // 1 year
	// Storage for covers and page images. STORAGE_TYPE is either "file" or "s3"
	STORAGE_TYPE = "file"
	STORAGE_PATH = "./data" // Directory for "file", key prefix for "s3"
	S3_BUCKET    = ""
	S3_REGION    = "us-east-1"
	S3_ENDPOINT  = "" // Custom endpoint for S3 compatible services, e.g. MinIO
	S3_KEY       = ""
	S3_SECRET    = ""
	// Images
	THUMB_SIZE          = 512 // Max width/height of cover thumbnails
	IMAGE_SAVE_ATTEMPTS = 3
	// Edit sessions that were not touched for this many seconds are dropped
	EDIT_SESSION_TTL = 3600
	// Initial admin user, created only when there are no users at all
	ADMIN_EMAIL    = ""
	ADMIN_PASSWORD = ""
)

func init() {
	loadDotEnv()

	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("SESSION_KEY", &SESSION_KEY)
	readEnvInt("SESSION_MAXAGE", &SESSION_MAXAGE)
	readEnvString("STORAGE_TYPE", &STORAGE_TYPE)
	readEnvString("STORAGE_PATH", &STORAGE_PATH)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_KEY", &S3_KEY)
	readEnvString("S3_SECRET", &S3_SECRET)
	readEnvInt("THUMB_SIZE", &THUMB_SIZE)
	readEnvInt("IMAGE_SAVE_ATTEMPTS", &IMAGE_SAVE_ATTEMPTS)
	readEnvInt("EDIT_SESSION_TTL", &EDIT_SESSION_TTL)
	readEnvString("ADMIN_EMAIL", &ADMIN_EMAIL)
	readEnvString("ADMIN_PASSWORD", &ADMIN_PASSWORD)
}

// loadDotEnv loads the first .env file found in the current directory or its parents.
// Variables already present in the environment are not overwritten.
func loadDotEnv() {
	envPath := ".env"
	for i := 0; i < 3; i++ {
		if _, err := os.Stat(envPath); err == nil {
			if err = godotenv.Load(envPath); err != nil {
				log.Printf("Warning: error loading %s: %v", envPath, err)
			}
			return
		}
		envPath = filepath.Join("..", envPath)
	}
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring %s: %v", name, err)
		return
	}
	*value = f
}

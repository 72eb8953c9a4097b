package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

// Config holds every runtime parameter of the application.
type Config struct {
	DatabaseURL      string
	JWTSecretKey     string
	ServerPort       int
	LeagueRangesFile string

	// Cloudflare R2 settings for database backups. Optional: when the
	// account id is empty, backups are disabled.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from the environment, optionally seeded from a
// .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	rangesFile := os.Getenv("LEAGUE_RANGES_FILE")
	if rangesFile == "" {
		rangesFile = "leagues.csv"
	}

	return &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		LeagueRangesFile:  rangesFile,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}

// BackupEnabled reports whether enough R2 settings are present to upload
// snapshots.
func (c *Config) BackupEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// LoadLeagueRanges parses the division definition CSV. Expected columns
// are name, minimum rating, maximum rating; the header row and rows with
// unparsable bounds are skipped. Ranges come back sorted by descending
// minimum so the strongest league that contains a rating matches first.
func LoadLeagueRanges(path string) ([]models.LeagueRange, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open league ranges file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse league ranges file %s: %w", path, err)
	}

	var ranges []models.LeagueRange
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		min, errMin := strconv.Atoi(strings.TrimSpace(row[1]))
		max, errMax := strconv.Atoi(strings.TrimSpace(row[2]))
		if errMin != nil || errMax != nil {
			// Header row or malformed line.
			continue
		}
		ranges = append(ranges, models.LeagueRange{Name: strings.TrimSpace(row[0]), Min: min, Max: max})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("league ranges file %s contains no usable rows", path)
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Min > ranges[j].Min })
	return ranges, nil
}

// Package config loads the tool configuration: the company profile from a
// JSON file and SMTP credentials from the environment (optionally seeded
// from a .env file).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Profile identifies the sender: the landlord or property manager whose
// name, contact data and bank account appear on every letter.
type Profile struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Street   string `json:"street"`
	Postal   string `json:"postal"`
	City     string `json:"city"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IBAN     string `json:"iban"`
	BIC      string `json:"bic"`
	Bank     string `json:"bank"`
	Province string `json:"province"` // German state abbreviation for the business calendar
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type Config struct {
	Profile      Profile `json:"profile"`
	Property     string  `json:"property"`       // portfolio/property tag used in filenames
	LogoURL      string  `json:"logoURL"`        // footer logo, left
	PartnerLogo  string  `json:"partnerLogoURL"` // footer logo, right
	OutputDir    string  `json:"outputDir"`
	SMTP         SMTPConfig `json:"-"`
}

// Load reads the JSON profile configuration and merges SMTP settings from
// the environment. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Profile.Name == "" {
		return nil, fmt.Errorf("profile name must not be empty")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	_ = godotenv.Load()
	cfg.SMTP = smtpFromEnv()

	return &cfg, nil
}

func smtpFromEnv() SMTPConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
	}
}

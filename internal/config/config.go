package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Uber struct {
		BaseURL        string `yaml:"base_url"`
		SandboxBaseURL string `yaml:"sandbox_base_url"`
		ServerToken    string `yaml:"server_token"`
	} `yaml:"uber"`
	Geocoder struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"geocoder"`
	Auth struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"auth"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	// Secrets may come from the environment instead of the file.
	if v := os.Getenv("UBER_SERVER_TOKEN"); v != "" {
		cfg.Uber.ServerToken = v
	}
	if v := os.Getenv("GEOCODER_API_KEY"); v != "" {
		cfg.Geocoder.APIKey = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.Auth.SigningKey = v
	}
	return cfg
}

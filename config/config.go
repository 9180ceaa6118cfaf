package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // Token expiry in minutes
	} `yaml:"jwt"`

	AI struct {
		Provider     string   `yaml:"provider"` // "chat" or "gemini"
		ApiKey       string   `yaml:"apiKey"`
		EndpointURL  string   `yaml:"endpointUrl"`  // chat-completions endpoint for evaluation
		GenerateURL  string   `yaml:"generateUrl"`  // discussion generation endpoint
		ServiceToken string   `yaml:"serviceToken"` // bearer token for the generation endpoint
		Models       []string `yaml:"models"`       // evaluation candidates, priority order
		MaxTokens    int      `yaml:"maxTokens"`
		Temperature  float64  `yaml:"temperature"`
	} `yaml:"ai"`

	Speech struct {
		AudioDir string `yaml:"audioDir"`
	} `yaml:"speech"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return &cfg, nil
}

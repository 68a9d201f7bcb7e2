package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML приводит флаг enabled к bool прямо при разборе конфига.
// В yaml он может прийти и как true, и как строка "true".
func (s *SourceConfig) UnmarshalYAML(node *yaml.Node) error {
	// Флаги декодируем в yaml.Node значением: скаляр в *yaml.Node yaml.v3 не положит
	var raw struct {
		Name        string    `yaml:"name"`
		Type        string    `yaml:"type"`
		URL         string    `yaml:"url"`
		Enabled     yaml.Node `yaml:"enabled"`
		FullContent yaml.Node `yaml:"full_content"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	enabled, err := parseFlag(raw.Enabled, true)
	if err != nil {
		return fmt.Errorf("source %s: enabled: %w", raw.Name, err)
	}

	fullContent, err := parseFlag(raw.FullContent, false)
	if err != nil {
		return fmt.Errorf("source %s: full_content: %w", raw.Name, err)
	}

	*s = SourceConfig{
		Name:        raw.Name,
		Type:        strings.ToLower(strings.TrimSpace(raw.Type)),
		URL:         raw.URL,
		Enabled:     enabled,
		FullContent: fullContent,
	}

	return nil
}

// Нулевой Kind значит, что ключа в конфиге не было
func parseFlag(node yaml.Node, fallback bool) (bool, error) {
	if node.Kind == 0 {
		return fallback, nil
	}
	if node.Kind != yaml.ScalarNode {
		return false, fmt.Errorf("expected scalar value")
	}
	if node.Tag == "!!null" {
		return fallback, nil
	}

	return ParseBool(node.Value)
}

// ParseBool понимает true/false, yes/no, on/off, 1/0 в любом регистре
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

package config

import (
	"fmt"
	"strings"
)

// PIIMode selects how questions containing personal information are handled.
type PIIMode string

const (
	PIIModeDetect PIIMode = "detect"
	PIIModeRedact PIIMode = "redact"
	PIIModeStrict PIIMode = "strict"
	PIIModeOff    PIIMode = "off"
)

// GuardrailsConfig controls the privacy gate in front of the models.
type GuardrailsConfig struct {
	PIIMode PIIMode `mapstructure:"pii_mode"`
}

// Normalize lower-cases the mode and applies the detect default.
func (c GuardrailsConfig) Normalize() GuardrailsConfig {
	cfg := c
	cfg.PIIMode = PIIMode(strings.ToLower(strings.TrimSpace(string(cfg.PIIMode))))
	if cfg.PIIMode == "" {
		cfg.PIIMode = PIIModeDetect
	}
	return cfg
}

// Validate rejects unknown modes instead of silently picking one.
func (c GuardrailsConfig) Validate() error {
	switch c.Normalize().PIIMode {
	case PIIModeDetect, PIIModeRedact, PIIModeStrict, PIIModeOff:
		return nil
	default:
		return fmt.Errorf("guardrails.pii_mode %q unknown (detect, redact, strict, off)", c.PIIMode)
	}
}

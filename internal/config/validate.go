package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVision(); err != nil {
		return err
	}
	if err := c.validateGrading(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateVision() error {
	if strings.TrimSpace(c.Vision.BaseURL) == "" {
		return errors.New("vision.base_url must be set")
	}
	return nil
}

func (c *Config) validateGrading() error {
	if !c.Grading.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Grading.BaseURL) == "" {
		return errors.New("grading.base_url must be set when grading.enabled is true")
	}
	if strings.TrimSpace(c.Grading.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/carddex/config.toml"
		}
		return fmt.Errorf("grading.api_key is required when grading.enabled is true. Set CARDDEX_GRADING_API_KEY env var or edit %s (create with 'carddex config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptFiles replaces inline explanation prompts with file contents
// when a prompt file is configured
func (c *Config) loadPromptFiles() error {
	prompts := &c.AI.Explain.Prompts

	if prompts.SystemFile != "" {
		content, err := loadPromptFromFile(prompts.SystemFile, "system")
		if err != nil {
			return err
		}
		prompts.System = content
	}

	if prompts.UserFile != "" {
		content, err := loadPromptFromFile(prompts.UserFile, "user")
		if err != nil {
			return err
		}
		if !strings.Contains(content, "{{") {
			return fmt.Errorf("user prompt file '%s' contains no template placeholders", prompts.UserFile)
		}
		prompts.User = content
	}

	if prompts.System == "" && prompts.User == "" {
		log.Println("[CONFIG] No custom explanation prompts loaded - using built-in defaults")
	}
	return nil
}

// loadPromptFromFile reads a non-empty prompt from disk
func loadPromptFromFile(filePath, promptType string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", promptType, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", promptType, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", promptType, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", promptType, absPath)
	}

	log.Printf("[CONFIG] Loaded %s explanation prompt from file: %s (%d characters)", promptType, absPath, len(trimmed))
	return trimmed, nil
}

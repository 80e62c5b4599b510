package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/applykit/internal/types"
)

// Assets are the user's read-only inputs, loaded once at startup.
type Assets struct {
	CVTemplate   string           // base CV text
	Guide        string           // tailoring guide
	Examples     string           // cover-letter style examples
	Style        types.StyleGuide // layout for both document kinds
	DocxTemplate []byte           // optional Word template, nil if unset
}

// LoadAssets reads every configured asset. Any missing, unreadable or
// malformed file fails the whole load with a *ConfigurationError.
func LoadAssets(cfg *Config) (*Assets, error) {
	var a Assets
	var err error

	if a.CVTemplate, err = readText(cfg.CVPath, "CV template"); err != nil {
		return nil, err
	}
	if a.Guide, err = readText(cfg.GuidePath, "tailoring guide"); err != nil {
		return nil, err
	}
	if a.Examples, err = readText(cfg.ExamplesPath, "cover letter examples"); err != nil {
		return nil, err
	}

	styleData, err := readFile(cfg.StylePath, "style guide")
	if err != nil {
		return nil, err
	}
	style, err := ParseStyleGuide(styleData)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			ce.Path = cfg.StylePath
		}
		return nil, err
	}
	a.Style = *style

	if cfg.DocxTemplatePath != "" {
		if a.DocxTemplate, err = readFile(cfg.DocxTemplatePath, "DOCX template"); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// ParseStyleGuide decodes and validates a YAML style guide. Both the
// cv_style and cover_letter_style sections are required, each with
// margins, font and spacing.
func ParseStyleGuide(data []byte) (*types.StyleGuide, error) {
	var sg types.StyleGuide
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sg); err != nil {
		return nil, &ConfigurationError{Message: "failed to parse style guide", Cause: err}
	}
	if err := validate.Struct(&sg); err != nil {
		return nil, &ConfigurationError{Message: "style guide is missing required keys", Cause: err}
	}
	return &sg, nil
}

func readFile(path, what string) ([]byte, error) {
	if path == "" {
		return nil, &ConfigurationError{Message: fmt.Sprintf("%s path is not set", what)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("cannot read %s", what), Path: path, Cause: err}
	}
	return data, nil
}

func readText(path, what string) (string, error) {
	data, err := readFile(path, what)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", &ConfigurationError{Message: fmt.Sprintf("%s is empty", what), Path: path}
	}
	return string(data), nil
}

package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks the configuration for invalid values. It returns a
// criterio field-error collection naming every offending field.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("color", c.Color, validColorMode),
		criterio.Run("review.context_lines", c.Review.ContextLines, nonNegative),
		c.validatePatterns(),
	)
}

// validatePatterns checks every include and exclude glob with the
// doublestar pattern syntax.
func (c *Config) validatePatterns() error {
	var errs criterio.FieldErrorsBuilder

	for i, pattern := range c.Review.Include {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("review.include[%d]", i), fmt.Errorf("invalid pattern %q", pattern))
		}
	}

	for i, pattern := range c.Review.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("review.exclude[%d]", i), fmt.Errorf("invalid pattern %q", pattern))
		}
	}

	return errs.ToError()
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func validColorMode(mode string) error {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	}
	return fmt.Errorf("must be one of %s, %s, %s", ColorAuto, ColorAlways, ColorNever)
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must be zero or greater")
	}
	return nil
}

// isDirectoryOrNotExist allows paths that either do not exist yet (they
// are created on first write) or exist and are directories.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil // covered by notEmpty
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	return nil
}

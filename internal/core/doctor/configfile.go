package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/redline/internal/core/config"
)

// ConfigCheck verifies the config file and the loaded configuration.
type ConfigCheck struct {
	path string
	cfg  *config.Config
}

// NewConfigCheck creates a new config check over the loaded config and
// the path it was loaded from.
func NewConfigCheck(path string, cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{path: path, cfg: cfg}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusWarn,
			Detail: "not found, built-in defaults in use",
		})
	} else if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.path,
			Status: StatusFail,
			Detail: fmt.Sprintf("inaccessible: %v", err),
		})
	} else {
		result.Items = append(result.Items, CheckItem{Label: c.path, Status: StatusPass})
	}

	if err := c.cfg.Validate(); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "validation",
			Status: StatusFail,
			Detail: err.Error(),
		})
	} else {
		result.Items = append(result.Items, CheckItem{Label: "validation", Status: StatusPass})
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "review patterns",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d include, %d exclude", len(c.cfg.Review.Include), len(c.cfg.Review.Exclude)),
	})

	return result
}

package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirCheck verifies the data directory exists, is writable, and that
// every store file in it still parses as JSON.
type DataDirCheck struct {
	dataDir    string
	storeFiles []string
}

// NewDataDirCheck creates a new data directory check. storeFiles are the
// absolute paths of the JSON store files expected under the data dir.
func NewDataDirCheck(dataDir string, storeFiles []string) *DataDirCheck {
	return &DataDirCheck{dataDir: dataDir, storeFiles: storeFiles}
}

func (c *DataDirCheck) Name() string {
	return "Data Directory"
}

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dataDir)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:  c.dataDir,
			Status: StatusWarn,
			Detail: "does not exist yet (created on first write)",
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.dataDir,
			Status: StatusFail,
			Detail: fmt.Sprintf("inaccessible: %v", err),
		})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  c.dataDir,
			Status: StatusFail,
			Detail: "path is not a directory",
		})
		return result
	}

	result.Items = append(result.Items, c.writableItem())

	for _, path := range c.storeFiles {
		result.Items = append(result.Items, c.storeFileItem(path))
	}

	return result
}

// writableItem probes the directory with a real write, which catches
// permission and read-only filesystem problems a stat cannot see.
func (c *DataDirCheck) writableItem() CheckItem {
	probe, err := os.CreateTemp(c.dataDir, ".doctor-*")
	if err != nil {
		return CheckItem{
			Label:  "writable",
			Status: StatusFail,
			Detail: fmt.Sprintf("cannot write: %v", err),
		}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return CheckItem{Label: "writable", Status: StatusPass}
}

func (c *DataDirCheck) storeFileItem(path string) CheckItem {
	label := filepath.Base(path)

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return CheckItem{
			Label:  label,
			Status: StatusPass,
			Detail: "not created yet",
		}
	case err != nil:
		return CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: fmt.Sprintf("unreadable: %v", err),
		}
	}

	if len(data) == 0 {
		return CheckItem{Label: label, Status: StatusPass, Detail: "empty"}
	}

	if !json.Valid(data) {
		return CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: "corrupt: not valid JSON",
		}
	}

	return CheckItem{Label: label, Status: StatusPass}
}

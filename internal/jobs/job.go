package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"relicnotify/internal/config"
	"relicnotify/internal/services"
	"relicnotify/internal/target"
)

// Job is a named, ordered list of deployment targets.
type Job struct {
	Name    string                       `toml:"name"`
	Targets []target.NotificationTarget `toml:"deployment"`

	// Path is the file the job was loaded from.
	Path string `toml:"-"`
}

// Load parses the job file at path. An empty target list is not an error
// here; dispatch reports it. When the file has no name, the file's base name
// without extension is used.
func Load(path string) (*Job, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "load", "expand job path", err)
	}
	if strings.TrimSpace(expanded) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "load", "job file path is required", nil)
	}

	file, err := os.Open(expanded)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "load", "open job file", err)
	}
	defer file.Close()

	var job Job
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&job); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "jobs", "load", fmt.Sprintf("parse %s", expanded), err)
	}

	job.Path = expanded
	job.Name = strings.TrimSpace(job.Name)
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(expanded), filepath.Ext(expanded))
	}
	return &job, nil
}

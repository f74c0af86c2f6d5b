package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// LoadProjectContext reads a project description from a .yaml, .yml or
// .json file and validates it. Unknown fields are rejected.
func LoadProjectContext(path string) (*models.ProjectContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project context: %w", err)
	}

	var pc models.ProjectContext
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&pc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("project context %s is empty", path)
			}
			return nil, fmt.Errorf("parse project context %s: %w", path, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&pc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("project context %s is empty", path)
			}
			return nil, fmt.Errorf("parse project context %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported project context format %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}

	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return &pc, nil
}

// LoadContext reads the context document saved alongside projectName's roadmap.
func (m *Manager) LoadContext(projectName string) (*models.ProjectContext, error) {
	return LoadProjectContext(m.ContextPath(projectName))
}

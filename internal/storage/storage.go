// Package storage persists roadmaps as JSON documents next to a YAML copy
// of their project context, and locates where an unfinished roadmap should
// resume.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/arbor/pkg/models"
)

// File suffixes for the two artifacts written per roadmap.
const (
	RoadmapSuffix = ".roadmap.json"
	ContextSuffix = ".context.yaml"
)

// Manager reads and writes roadmaps inside a single directory.
type Manager struct {
	dir string
}

// Entry describes one saved roadmap.
type Entry struct {
	Slug    string
	Path    string
	ModTime time.Time
}

// NewManager creates a manager rooted at dir. The directory is created on
// first save.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the storage directory.
func (m *Manager) Dir() string {
	return m.dir
}

// RoadmapPath returns where the roadmap for projectName is stored.
func (m *Manager) RoadmapPath(projectName string) string {
	return filepath.Join(m.dir, Slugify(projectName)+RoadmapSuffix)
}

// PathFor returns where Save writes rm.
func (m *Manager) PathFor(rm *models.Roadmap) string {
	return m.RoadmapPath(projectName(rm))
}

// ContextPath returns where the context document for projectName is stored.
func (m *Manager) ContextPath(projectName string) string {
	return filepath.Join(m.dir, Slugify(projectName)+ContextSuffix)
}

// Save writes the full tree and the context document, each replaced
// atomically, and returns the roadmap path.
func (m *Manager) Save(rm *models.Roadmap) (string, error) {
	if rm == nil {
		return "", fmt.Errorf("roadmap is nil")
	}
	name := projectName(rm)

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	data, err := json.MarshalIndent(rm, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal roadmap: %w", err)
	}
	path := m.RoadmapPath(name)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write roadmap: %w", err)
	}

	ctxData, err := yaml.Marshal(&rm.Context)
	if err != nil {
		return "", fmt.Errorf("marshal project context: %w", err)
	}
	if err := writeFileAtomic(m.ContextPath(name), ctxData); err != nil {
		return "", fmt.Errorf("write project context: %w", err)
	}

	return path, nil
}

// Load reads a roadmap document from path.
func (m *Manager) Load(path string) (*models.Roadmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roadmap file: %w", err)
	}

	var rm models.Roadmap
	if err := json.Unmarshal(data, &rm); err != nil {
		return nil, fmt.Errorf("unmarshal roadmap %s: %w", path, err)
	}
	if err := checkTree(&rm); err != nil {
		return nil, fmt.Errorf("invalid roadmap %s: %w", path, err)
	}
	return &rm, nil
}

// LoadProject reads the roadmap saved for projectName.
func (m *Manager) LoadProject(projectName string) (*models.Roadmap, error) {
	return m.Load(m.RoadmapPath(projectName))
}

// Exists reports whether a roadmap has been saved for projectName.
func (m *Manager) Exists(projectName string) bool {
	_, err := os.Stat(m.RoadmapPath(projectName))
	return err == nil
}

// List returns saved roadmaps sorted by slug. A missing directory yields
// an empty list.
func (m *Manager) List() ([]Entry, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), RoadmapSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, Entry{
			Slug:    strings.TrimSuffix(e.Name(), RoadmapSuffix),
			Path:    filepath.Join(m.dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// checkTree rejects documents the walker cannot traverse: null nodes and
// statuses or priorities outside the known sets. Empty values are allowed.
func checkTree(rm *models.Roadmap) error {
	for i, m := range rm.Milestones {
		at := fmt.Sprintf("milestones[%d]", i)
		if m == nil {
			return fmt.Errorf("%s: null entry", at)
		}
		if err := checkNode(at, m.Status, m.Priority); err != nil {
			return err
		}
		for j, e := range m.Epics {
			at := fmt.Sprintf("%s.epics[%d]", at, j)
			if e == nil {
				return fmt.Errorf("%s: null entry", at)
			}
			if err := checkNode(at, e.Status, e.Priority); err != nil {
				return err
			}
			for k, s := range e.Stories {
				at := fmt.Sprintf("%s.stories[%d]", at, k)
				if s == nil {
					return fmt.Errorf("%s: null entry", at)
				}
				if err := checkNode(at, s.Status, s.Priority); err != nil {
					return err
				}
				for l, t := range s.Tasks {
					at := fmt.Sprintf("%s.tasks[%d]", at, l)
					if t == nil {
						return fmt.Errorf("%s: null entry", at)
					}
					if err := checkNode(at, t.Status, t.Priority); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkNode(at string, status models.Status, priority models.Priority) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("%s.status: unknown status %q", at, status)
	}
	if priority != "" && !priority.Valid() {
		return fmt.Errorf("%s.priority: unknown priority %q", at, priority)
	}
	return nil
}

func projectName(rm *models.Roadmap) string {
	if rm.ProjectName != "" {
		return rm.ProjectName
	}
	return rm.Context.Name
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, then renames it over path so readers never see a partial file.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

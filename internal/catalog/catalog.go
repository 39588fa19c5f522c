// Package catalog supplies the ordered list of predefined tasks a
// participant can pick from. Catalogs are loaded from a directory
// holding a catalog.yaml plus one YAML file per task.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/validation"
)

// CatalogFileName is the catalog index file inside a catalog directory.
const CatalogFileName = "catalog.yaml"

// Descriptor identifies one catalog entry: a display label and a
// factory producing a fresh Task per presentation. Immutable once
// loaded.
type Descriptor struct {
	Label   string
	TaskID  string
	factory func() *models.Task
}

// Build produces a new Task instance. The catalog contract guarantees
// every loaded descriptor is constructible.
func (d *Descriptor) Build() *models.Task {
	return d.factory()
}

// Section is an ordered group of catalog entries under one title.
type Section struct {
	Title   string
	Entries []*Descriptor
}

// Catalog is the ordered collection of sections.
type Catalog struct {
	Sections []*Section
}

// catalogFile is the on-disk shape of catalog.yaml.
type catalogFile struct {
	Sections []struct {
		Title string `yaml:"title"`
		Tasks []struct {
			File  string `yaml:"file"`
			Label string `yaml:"label,omitempty"`
		} `yaml:"tasks"`
	} `yaml:"sections"`
}

// Load reads and validates the catalog in dir. Task files are
// validated against the task schema concurrently; the first problem
// found is returned.
func Load(dir string) (*Catalog, error) {
	indexPath := filepath.Join(dir, CatalogFileName)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("reading catalog index: %w", err)
	}

	if errs := validation.ValidateCatalogBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog %s: %s", indexPath, errs[0])
	}

	var index catalogFile
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing catalog index: %w", err)
	}

	if err := validateTaskFiles(dir, &index); err != nil {
		return nil, err
	}

	cat := &Catalog{}
	seen := map[string]bool{}
	for _, sec := range index.Sections {
		section := &Section{Title: sec.Title}
		for _, entry := range sec.Tasks {
			task, err := models.LoadTask(filepath.Join(dir, entry.File))
			if err != nil {
				return nil, err
			}
			if seen[task.Identifier] {
				return nil, fmt.Errorf("duplicate task id %q in catalog", task.Identifier)
			}
			seen[task.Identifier] = true

			label := entry.Label
			if label == "" {
				label = task.Title
			}

			proto := task
			section.Entries = append(section.Entries, &Descriptor{
				Label:   label,
				TaskID:  proto.Identifier,
				factory: func() *models.Task { return proto.Clone() },
			})
		}
		cat.Sections = append(cat.Sections, section)
	}

	return cat, nil
}

// validateTaskFiles schema-checks every referenced task file.
func validateTaskFiles(dir string, index *catalogFile) error {
	var g errgroup.Group
	for _, sec := range index.Sections {
		for _, entry := range sec.Tasks {
			path := filepath.Join(dir, entry.File)
			g.Go(func() error {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading task file: %w", err)
				}
				if errs := validation.ValidateTaskBytes(data); len(errs) > 0 {
					return fmt.Errorf("invalid task %s: %s", path, errs[0])
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// Find looks a descriptor up by task ID or display label.
func (c *Catalog) Find(key string) (*Descriptor, bool) {
	for _, sec := range c.Sections {
		for _, d := range sec.Entries {
			if d.TaskID == key || d.Label == key {
				return d, true
			}
		}
	}
	return nil, false
}

// NewDescriptor creates a descriptor directly from a task, for callers
// that build tasks programmatically rather than from YAML.
func NewDescriptor(label string, task *models.Task) *Descriptor {
	return &Descriptor{
		Label:   label,
		TaskID:  task.Identifier,
		factory: func() *models.Task { return task.Clone() },
	}
}

// NewDescriptorFunc creates a descriptor with a custom factory. The
// factory must produce a valid task on every call.
func NewDescriptorFunc(label, taskID string, factory func() *models.Task) *Descriptor {
	return &Descriptor{Label: label, TaskID: taskID, factory: factory}
}

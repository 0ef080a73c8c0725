// Package registry holds the read-only catalog of worker services.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	contractx "github.com/tanpawarit/supervisor-agent/agent/contract"
	"gopkg.in/yaml.v3"
)

// Names and intents the core refers to directly.
const (
	AgentTaskCreation         = "KnowledgeBaseBuilderAgent"
	IntentCreateTask          = "create_task"
	AgentTaskDependency       = "task_dependency_agent"
	IntentResolveDependencies = "task.resolve_dependencies"
	AgentDocumentReviewer     = "document_reviewer_agent"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrDuplicateAgent = errors.New("duplicate agent name in catalog")

type Config struct {
	CatalogPath string `envconfig:"CATALOG_PATH" split_words:"true"`
}

// Catalog implements contractx.Registry over an immutable list of workers.
type Catalog struct {
	workers []contractx.WorkerDescriptor
	byName  map[string]int
}

var _ contractx.Registry = (*Catalog)(nil)

func New(workers ...contractx.WorkerDescriptor) (*Catalog, error) {
	c := &Catalog{
		workers: make([]contractx.WorkerDescriptor, 0, len(workers)),
		byName:  make(map[string]int, len(workers)),
	}
	for _, w := range workers {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: worker name is empty", contractx.ErrValidation)
		}
		if _, ok := c.byName[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
		}
		w.Name = name
		w.Intents = append([]string(nil), w.Intents...)
		c.byName[name] = len(c.workers)
		c.workers = append(c.workers, w)
	}
	return c, nil
}

func MustNew(workers ...contractx.WorkerDescriptor) *Catalog {
	c, err := New(workers...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) List() []contractx.WorkerDescriptor {
	out := make([]contractx.WorkerDescriptor, len(c.workers))
	for i, w := range c.workers {
		w.Intents = append([]string(nil), w.Intents...)
		out[i] = w
	}
	return out
}

func (c *Catalog) Find(name string) (contractx.WorkerDescriptor, error) {
	idx, ok := c.byName[name]
	if !ok {
		return contractx.WorkerDescriptor{}, fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, name)
	}
	w := c.workers[idx]
	w.Intents = append([]string(nil), w.Intents...)
	return w, nil
}

type catalogFile struct {
	Workers []catalogEntry `yaml:"workers"`
}

type catalogEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Intents     []string `yaml:"intents"`
	Type        string   `yaml:"type"`
	Endpoint    string   `yaml:"endpoint"`
	Healthcheck string   `yaml:"healthcheck"`
	TimeoutMS   int      `yaml:"timeout_ms"`
}

// Parse decodes a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	workers := make([]contractx.WorkerDescriptor, 0, len(file.Workers))
	for _, e := range file.Workers {
		kind := contractx.TransportKind(strings.ToLower(strings.TrimSpace(e.Type)))
		if kind == "" {
			kind = contractx.TransportHTTP
		}
		workers = append(workers, contractx.WorkerDescriptor{
			Name:        e.Name,
			Description: strings.TrimSpace(e.Description),
			Intents:     e.Intents,
			Transport:   kind,
			Endpoint:    strings.TrimSpace(e.Endpoint),
			Healthcheck: strings.TrimSpace(e.Healthcheck),
			Timeout:     time.Duration(e.TimeoutMS) * time.Millisecond,
		})
	}
	return New(workers...)
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Loader returns a fresh catalog on every call, from path when set, else the embedded one.
type Loader func() (*Catalog, error)

func NewLoader(cfg Config) Loader {
	path := strings.TrimSpace(cfg.CatalogPath)
	if path == "" {
		return Default
	}
	return func() (*Catalog, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		return Parse(raw)
	}
}

// Load adapts the loader to the contract interface.
func (l Loader) Load() (contractx.Registry, error) {
	c, err := l()
	if err != nil {
		return nil, err
	}
	return c, nil
}

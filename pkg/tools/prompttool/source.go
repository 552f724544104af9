// Package prompttool loads tool handlers from a directory of YAML
// manifests. Each manifest declares a tool name, description, parameter
// schema, and a prompt template; invoking the tool renders the template
// with the call arguments and performs a one-shot model call. Manifests can
// be added or edited without recompiling, which makes this the preferred
// handler source during development.
package prompttool

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/angilabs/angi/pkg/tools"
)

// Manifest is the on-disk shape of one prompt tool.
type Manifest struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parameters  map[string]any `yaml:"parameters"`
	Prompt      string         `yaml:"prompt"`
}

// DirSource scans a directory for *.yaml / *.yml manifests on every load.
type DirSource struct {
	dir    string
	logger *slog.Logger
}

// Option customizes a DirSource.
type Option func(*DirSource)

// WithLogger overrides the source logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *DirSource) { s.logger = l }
}

// NewDirSource builds a source over the given manifest directory.
func NewDirSource(dir string, opts ...Option) *DirSource {
	s := &DirSource{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Name identifies the source in registry logs.
func (s *DirSource) Name() string { return "prompttool:" + s.dir }

// Load parses every manifest in the directory. A malformed manifest is
// logged and skipped; a manifest without a prompt template has no entry
// point and is skipped silently; a manifest without a name falls back to
// the file's base name.
func (s *DirSource) Load(ctx context.Context) ([]tools.Handler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read tool directory: %w", err)
	}

	var handlers []tools.Handler
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		handler, err := s.loadManifest(path)
		if err != nil {
			s.logger.Warn("skipping malformed tool manifest", "path", path, "error", err)
			continue
		}
		if handler != nil {
			handlers = append(handlers, handler)
		}
	}
	return handlers, nil
}

func (s *DirSource) loadManifest(path string) (tools.Handler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if strings.TrimSpace(m.Prompt) == "" {
		return nil, nil
	}
	if strings.TrimSpace(m.Name) == "" {
		base := filepath.Base(path)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	tmpl, err := template.New(m.Name).Option("missingkey=zero").Parse(m.Prompt)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	def := tools.Definition{
		Name:        m.Name,
		Description: m.Description,
		Parameters:  m.Parameters,
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		if args == nil {
			args = map[string]any{}
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, args); err != nil {
			return nil, fmt.Errorf("render prompt for %q: %w", m.Name, err)
		}
		return tc.Ask(ctx, buf.String())
	}), nil
}

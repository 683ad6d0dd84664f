package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project manifest looked up next to program files.
const ManifestFileName = "lume.yml"

var ErrManifestNotFound = errors.New("manifest: " + ManifestFileName + " not found")

// Manifest represents the parsed contents of lume.yml.
type Manifest struct {
	Path    string
	Name    string
	Version string
	Authors []string
	// Entrypoint is the custom entry-point name; empty when unset.
	Entrypoint string
	Compile    CompileSpec
	Log        LogSpec
}

// CompileSpec tunes the pass pipeline.
type CompileSpec struct {
	// Parallel is the number of rule bodies desugared at once; 0 runs the
	// pass sequentially.
	Parallel int
	// StackSegment is the number of nested frames a recursive pass runs on
	// one goroutine; 0 keeps the default.
	StackSegment int
}

// LogSpec configures the compiler's logger.
type LogSpec struct {
	Level string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses lume.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start looking for lume.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_./\-]*$`)
	versionPattern    = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}([0-9A-Za-z\-\+\.]*)?$`)
)

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version != "" && !versionPattern.MatchString(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
	}
	if m.Entrypoint != "" && !identifierPattern.MatchString(m.Entrypoint) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entrypoint %q is not a valid definition name", m.Entrypoint))
	}
	if m.Compile.Parallel < 0 {
		errs.Issues = append(errs.Issues, "compile.parallel must not be negative")
	}
	if m.Compile.StackSegment < 0 {
		errs.Issues = append(errs.Issues, "compile.stack_segment must not be negative")
	}
	if m.Log.Level != "" {
		if _, ok := logLevels[m.Log.Level]; !ok {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log.level %q must be one of debug, info, warn, error", m.Log.Level))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

type manifestFile struct {
	Name       string      `yaml:"name"`
	Version    string      `yaml:"version"`
	Authors    stringList  `yaml:"authors"`
	Entrypoint string      `yaml:"entrypoint"`
	Compile    compileYAML `yaml:"compile"`
	Log        logYAML     `yaml:"log"`
}

type compileYAML struct {
	Parallel     int `yaml:"parallel"`
	StackSegment int `yaml:"stack_segment"`
}

type logYAML struct {
	Level string `yaml:"level"`
}

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	return &Manifest{
		Path:       path,
		Name:       strings.TrimSpace(mf.Name),
		Version:    strings.TrimSpace(mf.Version),
		Authors:    mf.Authors.Clone(),
		Entrypoint: strings.TrimSpace(mf.Entrypoint),
		Compile: CompileSpec{
			Parallel:     mf.Compile.Parallel,
			StackSegment: mf.Compile.StackSegment,
		},
		Log: LogSpec{Level: strings.ToLower(strings.TrimSpace(mf.Log.Level))},
	}
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

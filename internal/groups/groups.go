// Package groups manages named multi-repo project groups.
//
// A group maps a name to the set of repository paths whose open work should
// be analyzed together. Groups persist in a YAML settings file: the
// repo-local .scout/settings.yaml wins over the per-user ~/.scout/settings.yaml.
package groups

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the YAML file holding group definitions.
const SettingsFileName = "settings.yaml"

// settingsDir is the directory (under the repo root or home) holding scout state.
const settingsDir = ".scout"

// Settings is the on-disk structure of settings.yaml.
type Settings struct {
	// Groups maps group name to repository paths.
	Groups map[string][]string `yaml:"groups"`
}

// Manager reads and writes group definitions at a fixed settings path.
type Manager struct {
	path     string
	settings *Settings
}

// Load finds the nearest settings file and returns a Manager bound to it.
// The repo-local file (projectRoot/.scout/settings.yaml) takes precedence;
// otherwise the per-user file is used. A missing file is not an error: the
// Manager starts empty and creates the file on first Save.
func Load(projectRoot string) (*Manager, error) {
	local := filepath.Join(projectRoot, settingsDir, SettingsFileName)
	if _, err := os.Stat(local); err == nil {
		return loadPath(local)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	return loadPath(filepath.Join(home, settingsDir, SettingsFileName))
}

// LoadPath returns a Manager bound to an explicit settings file.
func LoadPath(path string) (*Manager, error) {
	return loadPath(path)
}

func loadPath(path string) (*Manager, error) {
	m := &Manager{path: path, settings: &Settings{Groups: map[string][]string{}}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, m.settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	if m.settings.Groups == nil {
		m.settings.Groups = map[string][]string{}
	}
	return m, nil
}

// Path returns the settings file this Manager reads and writes.
func (m *Manager) Path() string {
	return m.path
}

// Get returns the repo paths in a group, or nil if the group doesn't exist.
func (m *Manager) Get(name string) []string {
	repos, ok := m.settings.Groups[name]
	if !ok {
		return nil
	}
	out := make([]string, len(repos))
	copy(out, repos)
	return out
}

// Set replaces a group's repo list, creating the group if needed.
func (m *Manager) Set(name string, repos []string) error {
	if name == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	m.settings.Groups[name] = dedupe(repos)
	return m.save()
}

// Delete removes a group. Deleting a nonexistent group is a no-op.
func (m *Manager) Delete(name string) error {
	delete(m.settings.Groups, name)
	return m.save()
}

// List returns all group names, sorted.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.settings.Groups))
	for name := range m.settings.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddRepo adds a repo path to a group, creating the group if needed.
// Adding a path already present is a no-op.
func (m *Manager) AddRepo(name, repo string) error {
	if name == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repo path cannot be empty")
	}
	for _, existing := range m.settings.Groups[name] {
		if existing == repo {
			return nil
		}
	}
	m.settings.Groups[name] = append(m.settings.Groups[name], repo)
	return m.save()
}

// RemoveRepo removes a repo path from a group. The group itself remains
// even when emptied.
func (m *Manager) RemoveRepo(name, repo string) error {
	repos, ok := m.settings.Groups[name]
	if !ok {
		return fmt.Errorf("group %q not found", name)
	}
	kept := repos[:0]
	for _, r := range repos {
		if r != repo {
			kept = append(kept, r)
		}
	}
	m.settings.Groups[name] = kept
	return m.save()
}

// GroupForRepo returns the name of the first group (alphabetically) that
// contains the given repo path, or "" if none does.
func (m *Manager) GroupForRepo(repo string) string {
	abs, err := filepath.Abs(repo)
	if err != nil {
		abs = repo
	}
	for _, name := range m.List() {
		for _, r := range m.settings.Groups[name] {
			rAbs, err := filepath.Abs(r)
			if err != nil {
				rAbs = r
			}
			if rAbs == abs {
				return name
			}
		}
	}
	return ""
}

func (m *Manager) save() error {
	data, err := yaml.Marshal(m.settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

func dedupe(repos []string) []string {
	seen := make(map[string]bool, len(repos))
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

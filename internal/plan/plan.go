// Package plan reads task plans from YAML files.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
	"gopkg.in/yaml.v3"
)

// Plan is a named set of shell tasks and their prerequisites.
type Plan struct {
	Name    string            `yaml:"name"`
	Workdir string            `yaml:"workdir"`
	Env     map[string]string `yaml:"env"`
	Tasks   []Task            `yaml:"tasks"`

	// Path is the file the plan was loaded from, empty for parsed plans.
	Path string `yaml:"-"`
}

// Task is one entry of a plan's task list.
type Task struct {
	Name    string        `yaml:"name"`
	Depends []string      `yaml:"depends"`
	Run     string        `yaml:"run"`
	Reset   string        `yaml:"reset"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads and parses the plan at path. A relative workdir is resolved
// against the directory holding the plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, taskerrors.NewPlanError(taskerrors.CodePlanRead, path,
			fmt.Sprintf("Failed to read plan file '%s'", path), err)
	}

	p, err := parse(data, path)
	if err != nil {
		return nil, err
	}
	p.Path = path

	base := filepath.Dir(path)
	switch {
	case p.Workdir == "":
		p.Workdir = base
	case !filepath.IsAbs(p.Workdir):
		p.Workdir = filepath.Join(base, p.Workdir)
	}
	return p, nil
}

// Parse decodes a plan from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	return parse(data, "")
}

func parse(data []byte, path string) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, taskerrors.NewPlanError(taskerrors.CodePlanParse, path,
				"Plan is empty", err)
		}
		return nil, taskerrors.NewPlanError(taskerrors.CodePlanParse, path,
			"Failed to parse plan", err)
	}
	p.normalize()
	return &p, nil
}

// normalize trims surrounding whitespace from task names and prerequisites.
func (p *Plan) normalize() {
	for i := range p.Tasks {
		t := &p.Tasks[i]
		t.Name = strings.TrimSpace(t.Name)
		for j, dep := range t.Depends {
			t.Depends[j] = strings.TrimSpace(dep)
		}
	}
}

// Validate checks that every task has a unique non-empty name and a command.
// Prerequisites naming no task are allowed; such tasks never become ready.
func (p *Plan) Validate() error {
	var problems []string
	if len(p.Tasks) == 0 {
		problems = append(problems, "plan defines no tasks")
	}

	seen := make(map[string]bool, len(p.Tasks))
	for i, t := range p.Tasks {
		name := t.Name
		switch {
		case strings.TrimSpace(name) == "":
			problems = append(problems, fmt.Sprintf("task #%d has no name", i+1))
		case name != strings.TrimSpace(name):
			problems = append(problems, fmt.Sprintf("task '%s' has surrounding whitespace in its name", name))
		case seen[name]:
			problems = append(problems, fmt.Sprintf("task '%s' is defined more than once", name))
		}
		seen[name] = true

		if strings.TrimSpace(t.Run) == "" {
			problems = append(problems, fmt.Sprintf("task '%s' has no run command", name))
		}
		if t.Timeout < 0 {
			problems = append(problems, fmt.Sprintf("task '%s' has a negative timeout", name))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return taskerrors.NewPlanError(taskerrors.CodePlanInvalid, p.Path,
		fmt.Sprintf("Plan is invalid: %s", strings.Join(problems, "; ")), nil).
		WithContext("problems", len(problems))
}

// Task returns the task with the given name.
func (p *Plan) Task(name string) (Task, bool) {
	for _, t := range p.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// Names returns the task names in file order.
func (p *Plan) Names() []string {
	names := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		names = append(names, t.Name)
	}
	return names
}

// Environ returns the process environment with the plan env and overrides
// applied on top, later entries winning.
func (p *Plan) Environ(overrides map[string]string) []string {
	env := os.Environ()
	for _, m := range []map[string]string{p.Env, overrides} {
		for k, v := range m {
			env = append(env, k+"="+v)
		}
	}
	return env
}

// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks that ids and task types are set and unique and that
// timeouts parse.
func (r *ActivityRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Activities))
	types := make(map[string]bool, len(r.Activities))
	for i, a := range r.Activities {
		switch {
		case a.ID == "":
			return fmt.Errorf("activity %d has no id", i)
		case a.TaskType == "":
			return fmt.Errorf("activity %s has no taskType", a.ID)
		case ids[a.ID]:
			return fmt.Errorf("duplicate activity id %s", a.ID)
		case types[a.TaskType]:
			return fmt.Errorf("duplicate taskType %s", a.TaskType)
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				return fmt.Errorf("activity %s: timeout: %w", a.ID, err)
			}
		}
		ids[a.ID] = true
		types[a.TaskType] = true
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Missing returns the task types not described by the registry, sorted.
func (r *ActivityRegistry) Missing(taskTypes ...string) []string {
	var missing []string
	for _, t := range taskTypes {
		if _, ok := r.Find(t); !ok {
			missing = append(missing, t)
		}
	}
	sort.Strings(missing)
	return missing
}

// EnsureRegistered fails when a served task type has no registry entry.
func (r *ActivityRegistry) EnsureRegistered(taskTypes ...string) error {
	if missing := r.Missing(taskTypes...); len(missing) > 0 {
		return fmt.Errorf("task types missing from activity registry: %s", strings.Join(missing, ", "))
	}
	return nil
}

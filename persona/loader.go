package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader reads a persona file on top of the built-in defaults
 * Fields absent from the file keep their default value
 */
type Loader struct {
	persona Persona
}

// NewLoader creates a loader holding the default persona
func NewLoader() *Loader {
	return &Loader{persona: Default()}
}

// Load reads and validates a persona YAML file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading persona file: %w", err)
	}

	p := Default()
	defaults := p.Fallbacks
	p.Fallbacks = nil
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing persona YAML: %w", err)
	}

	merged := make(map[string]string, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range p.Fallbacks {
		merged[k] = v
	}
	p.Fallbacks = merged

	if err := p.Validate(); err != nil {
		return fmt.Errorf("validating persona: %w", err)
	}

	l.persona = p
	return nil
}

// Persona returns the loaded persona
func (l *Loader) Persona() Persona {
	return l.persona
}

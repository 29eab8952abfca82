package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvPropertyInjection             = "LOCATOR_PROPERTY_INJECTION"
	EnvInjectTag                     = "LOCATOR_INJECT_TAG"
	EnvThrowIfPropertyInjectionFails = "LOCATOR_THROW_IF_PROPERTY_INJECTION_FAILS"
)

// LoadPolicy reads .env files (missing ones are skipped) and builds a Policy from the
// LOCATOR_* environment variables. Variables already set in the process win
// over the files.
func LoadPolicy(envFiles ...string) (Policy, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// a missing file is fine, a malformed one is not
		if e := godotenv.Load(f); e != nil && !errors.Is(e, fs.ErrNotExist) {
			return Policy{}, fmt.Errorf("%w: %s: %w", ErrConfiguration, f, e)
		}
	}

	var p Policy
	if v := os.Getenv(EnvPropertyInjection); v != "" {
		if e := p.PropertyInjection.UnmarshalText([]byte(v)); e != nil {
			return Policy{}, fmt.Errorf("%s: %w", EnvPropertyInjection, e)
		}
	}
	if tag := os.Getenv(EnvInjectTag); tag != "" {
		p.Marker = TagMarker(tag)
	}
	if v := os.Getenv(EnvThrowIfPropertyInjectionFails); v != "" {
		b, e := strconv.ParseBool(v)
		if e != nil {
			return Policy{}, fmt.Errorf("%w: %s: %v", ErrConfiguration, EnvThrowIfPropertyInjectionFails, e)
		}
		p.ThrowIfPropertyInjectionFails = b
	}

	return p, nil
}

type policyDocument struct {
	PropertyInjection             PropertyInjection `yaml:"property_injection"`
	InjectTag                     string            `yaml:"inject_tag"`
	ThrowIfPropertyInjectionFails bool              `yaml:"throw_if_property_injection_fails"`
}

// ParsePolicy builds a Policy from a YAML document:
//
//	property_injection: marked
//	inject_tag: inject
//	throw_if_property_injection_fails: true
func ParsePolicy(data []byte) (Policy, error) {
	var doc policyDocument
	if e := yaml.Unmarshal(data, &doc); e != nil {
		return Policy{}, fmt.Errorf("%w: %w", ErrConfiguration, e)
	}

	p := Policy{
		PropertyInjection:             doc.PropertyInjection,
		ThrowIfPropertyInjectionFails: doc.ThrowIfPropertyInjectionFails,
	}
	if doc.InjectTag != "" {
		p.Marker = TagMarker(doc.InjectTag)
	}

	return p, nil
}

func (p *PropertyInjection) UnmarshalYAML(value *yaml.Node) error {
	return p.UnmarshalText([]byte(value.Value))
}

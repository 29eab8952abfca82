package locator

import (
	"fmt"
	"reflect"
	"strings"
)

// PropertyInjection selects which fields are filled after construction.
type PropertyInjection int

const (
	// InjectNone leaves constructed objects as they are.
	InjectNone PropertyInjection = iota
	// InjectAllInterfaceProperties fills every settable, unset, resolvable field.
	InjectAllInterfaceProperties
	// InjectMarkedInterfaceProperties fills only fields the policy Marker selects.
	InjectMarkedInterfaceProperties
)

var injectionNames = map[PropertyInjection]string{
	InjectNone:                      "none",
	InjectAllInterfaceProperties:    "all",
	InjectMarkedInterfaceProperties: "marked",
}

func (p PropertyInjection) String() string {
	if s, ok := injectionNames[p]; ok {
		return s
	}

	return fmt.Sprintf("PropertyInjection(%d)", int(p))
}

func (p PropertyInjection) MarshalText() ([]byte, error) {
	if _, ok := injectionNames[p]; !ok {
		return nil, fmt.Errorf("%w: unknown property injection %d", ErrConfiguration, int(p))
	}

	return []byte(p.String()), nil
}

func (p *PropertyInjection) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range injectionNames {
		if s == v {
			*p = k
			return nil
		}
	}

	return fmt.Errorf("%w: unknown property injection %q", ErrConfiguration, string(text))
}

// PropertySelector reports whether a field of owner carries the host's
// injection marker.
type PropertySelector func(owner reflect.Type, field reflect.StructField) bool

// TagMarker selects fields carrying the struct tag key, e.g. `inject:""`.
func TagMarker(key string) PropertySelector {
	return func(_ reflect.Type, field reflect.StructField) bool {
		_, ok := field.Tag.Lookup(key)
		return ok
	}
}

// Policy configures property injection for a provider and its children.
type Policy struct {
	PropertyInjection PropertyInjection

	// Marker is required by InjectMarkedInterfaceProperties.
	Marker PropertySelector

	// ThrowIfPropertyInjectionFails makes New reject a policy the provider
	// can not honour instead of degrading it.
	ThrowIfPropertyInjectionFails bool
}

// effective returns the injection mode the provider will apply.
// degraded is set when marked injection is requested without a marker.
func (p Policy) effective() (mode PropertyInjection, degraded bool, e error) {
	if _, ok := injectionNames[p.PropertyInjection]; !ok {
		return InjectNone, false, fmt.Errorf("%w: unknown property injection %d", ErrConfiguration, int(p.PropertyInjection))
	}

	if p.PropertyInjection == InjectMarkedInterfaceProperties && p.Marker == nil {
		if p.ThrowIfPropertyInjectionFails {
			return InjectNone, false, fmt.Errorf("%w: marked property injection requires a marker", ErrConfiguration)
		}
		return InjectNone, true, nil
	}

	return p.PropertyInjection, false, nil
}

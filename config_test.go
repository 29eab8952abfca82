package locator_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/enorith/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policyEnv = []string{
	locator.EnvPropertyInjection,
	locator.EnvInjectTag,
	locator.EnvThrowIfPropertyInjectionFails,
}

// clearPolicyEnv unsets the policy variables for the test and restores them after.
func clearPolicyEnv(t *testing.T) {
	t.Helper()

	for _, k := range policyEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func markerSelects(p locator.Policy, tag reflect.StructTag) bool {
	return p.Marker(nil, reflect.StructField{Name: "F", Tag: tag})
}

func TestParsePolicy(t *testing.T) {
	t.Run("marked", func(t *testing.T) {
		p, err := locator.ParsePolicy([]byte("property_injection: marked\ninject_tag: di\nthrow_if_property_injection_fails: true\n"))
		require.NoError(t, err)
		assert.Equal(t, locator.InjectMarkedInterfaceProperties, p.PropertyInjection)
		assert.True(t, p.ThrowIfPropertyInjectionFails)
		require.NotNil(t, p.Marker)
		assert.True(t, markerSelects(p, `di:""`))
		assert.False(t, markerSelects(p, `inject:""`))
	})

	t.Run("defaults", func(t *testing.T) {
		p, err := locator.ParsePolicy([]byte("{}"))
		require.NoError(t, err)
		assert.Equal(t, locator.InjectNone, p.PropertyInjection)
		assert.Nil(t, p.Marker)
		assert.False(t, p.ThrowIfPropertyInjectionFails)
	})

	t.Run("case insensitive", func(t *testing.T) {
		p, err := locator.ParsePolicy([]byte("property_injection: ALL"))
		require.NoError(t, err)
		assert.Equal(t, locator.InjectAllInterfaceProperties, p.PropertyInjection)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := locator.ParsePolicy([]byte("property_injection: some"))
		assert.ErrorIs(t, err, locator.ErrConfiguration)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := locator.ParsePolicy([]byte("property_injection: [all"))
		assert.ErrorIs(t, err, locator.ErrConfiguration)
	})
}

func TestLoadPolicy_Environment(t *testing.T) {
	clearPolicyEnv(t)
	t.Setenv(locator.EnvPropertyInjection, "marked")
	t.Setenv(locator.EnvInjectTag, "inject")
	t.Setenv(locator.EnvThrowIfPropertyInjectionFails, "true")

	p, err := locator.LoadPolicy(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, locator.InjectMarkedInterfaceProperties, p.PropertyInjection)
	assert.True(t, p.ThrowIfPropertyInjectionFails)
	assert.True(t, markerSelects(p, `inject:""`))

	provider := newProvider(t, p)
	registerDivideByZero(t, provider)
	c, err := locator.Resolve[*Concrete](provider)
	require.NoError(t, err)
	assert.NotNil(t, c.PropertyToInject)
	assert.Nil(t, c.PropertyToSkip)
}

func TestLoadPolicy_DotEnv(t *testing.T) {
	clearPolicyEnv(t)
	file := filepath.Join(t.TempDir(), "locator.env")
	require.NoError(t, os.WriteFile(file, []byte(
		locator.EnvPropertyInjection+"=all\n"+locator.EnvThrowIfPropertyInjectionFails+"=false\n"), 0o600))

	t.Run("file", func(t *testing.T) {
		p, err := locator.LoadPolicy(file)
		require.NoError(t, err)
		assert.Equal(t, locator.InjectAllInterfaceProperties, p.PropertyInjection)
		assert.False(t, p.ThrowIfPropertyInjectionFails)
		assert.Nil(t, p.Marker)
	})

	t.Run("process wins", func(t *testing.T) {
		t.Setenv(locator.EnvPropertyInjection, "none")

		p, err := locator.LoadPolicy(file)
		require.NoError(t, err)
		assert.Equal(t, locator.InjectNone, p.PropertyInjection)
	})
}

func TestLoadPolicy_MalformedDotEnv(t *testing.T) {
	clearPolicyEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "broken.env")
	require.NoError(t, os.WriteFile(file, []byte("LOCATOR-PROPERTY-INJECTION=all\n"), 0o600))

	_, err := locator.LoadPolicy(filepath.Join(dir, "missing.env"), file)
	assert.ErrorIs(t, err, locator.ErrConfiguration)
}

func TestLoadPolicy_Invalid(t *testing.T) {
	tt := []struct {
		name, key, value string
	}{
		{"mode", locator.EnvPropertyInjection, "some"},
		{"throw flag", locator.EnvThrowIfPropertyInjectionFails, "maybe"},
	}

	for _, v := range tt {
		t.Run(v.name, func(t *testing.T) {
			clearPolicyEnv(t)
			t.Setenv(v.key, v.value)

			_, err := locator.LoadPolicy(filepath.Join(t.TempDir(), "missing.env"))
			assert.ErrorIs(t, err, locator.ErrConfiguration)
		})
	}
}

func TestPropertyInjection_Text(t *testing.T) {
	for _, mode := range []locator.PropertyInjection{
		locator.InjectNone,
		locator.InjectAllInterfaceProperties,
		locator.InjectMarkedInterfaceProperties,
	} {
		t.Run(mode.String(), func(t *testing.T) {
			text, err := mode.MarshalText()
			require.NoError(t, err)

			var got locator.PropertyInjection
			require.NoError(t, got.UnmarshalText(text))
			assert.Equal(t, mode, got)
		})
	}

	_, err := locator.PropertyInjection(7).MarshalText()
	assert.ErrorIs(t, err, locator.ErrConfiguration)
	assert.Equal(t, "PropertyInjection(7)", locator.PropertyInjection(7).String())
}

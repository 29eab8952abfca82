package locator_test

import (
	"testing"

	"github.com/enorith/locator"
	"github.com/enorith/locator/container"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type Greeter interface {
	Greet() string
}

type English struct {
	Name string
}

func (e *English) Greet() string {
	return "hello " + e.Name
}

type Dependency interface {
	Dependency()
}

type Marked interface {
	Marked()
}

type Concrete1 struct{}

func (*Concrete1) Dependency() {}

type Concrete2 struct{}

func (*Concrete2) Marked() {}

type HasDependentProperty struct {
	Dependency       Dependency
	MarkedDependency Marked `inject:""`
}

type DivideByZeroError struct{}

func (*DivideByZeroError) Error() string {
	return "integer divide by zero"
}

type Concrete struct {
	PropertyToInject error `inject:""`
	PropertyToSkip   error
}

func newProvider(t *testing.T, policy locator.Policy) *locator.Provider {
	t.Helper()

	p, err := locator.New(container.New(), policy, locator.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(p.Dispose)

	return p
}

func allProperties() locator.Policy {
	return locator.Policy{PropertyInjection: locator.InjectAllInterfaceProperties}
}

func markedProperties() locator.Policy {
	return locator.Policy{
		PropertyInjection: locator.InjectMarkedInterfaceProperties,
		Marker:            locator.TagMarker("inject"),
	}
}

func newConcrete() (*Concrete, error) {
	return &Concrete{}, nil
}

func newDivideByZero() (error, error) {
	return &DivideByZeroError{}, nil
}

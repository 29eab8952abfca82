package locator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/enorith/locator/container"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrComponentNotRegistered = errors.New("component not registered")
	ErrDependencyResolution   = errors.New("dependency resolution failed")
	ErrConfiguration          = errors.New("invalid configuration")
	ErrDisposed               = errors.New("provider disposed")
)

// ArgumentError names a required argument that was nil.
// It matches ErrInvalidArgument with errors.Is.
type ArgumentError string

func (a ArgumentError) Error() string {
	return fmt.Sprintf("argument [%s] is nil", string(a))
}

func (a ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func notRegistered(t reflect.Type) error {
	return fmt.Errorf("%w: [%s]", ErrComponentNotRegistered, t)
}

// translate maps container failures onto the provider's error kinds.
func translate(t reflect.Type, e error) error {
	var ue container.UnregisteredAbstractError

	switch {
	case e == nil:
		return nil
	case errors.As(e, &ue):
		return fmt.Errorf("%w: [%s]", ErrComponentNotRegistered, string(ue))
	case errors.Is(e, container.ErrNotConstructible):
		return fmt.Errorf("%w: %w", ErrComponentNotRegistered, e)
	case errors.Is(e, container.ErrDisposed):
		return fmt.Errorf("%w: %w", ErrDisposed, e)
	case errors.Is(e, container.ErrArgumentMismatch), errors.Is(e, container.ErrArgumentsNotSupported):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, e)
	}

	return fmt.Errorf("resolve [%s]: %w", t, e)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}

	return false
}

package locator

import (
	"fmt"
	"reflect"
)

// TypeOf returns the type identifier of T. Interfaces work as T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func Register[TFrom, TTo any](p *Provider) error {
	return p.RegisterType(TypeOf[TFrom](), TypeOf[TTo]())
}

func RegisterFunc[T any](p *Provider, f func() (T, error)) error {
	if f == nil {
		return ArgumentError("factory")
	}

	return p.RegisterFactory(TypeOf[T](), func() (interface{}, error) {
		v, e := f()
		return v, e
	})
}

func RegisterSingletonOf[T any](p *Provider, instance T) error {
	return p.RegisterSingleton(TypeOf[T](), instance)
}

func RegisterSingletonFunc[T any](p *Provider, f func() (T, error)) error {
	if f == nil {
		return ArgumentError("factory")
	}

	return p.RegisterSingletonFactory(TypeOf[T](), func() (interface{}, error) {
		v, e := f()
		return v, e
	})
}

func CallbackWhenRegisteredFor[T any](p *Provider, action func()) error {
	return p.CallbackWhenRegistered(TypeOf[T](), action)
}

func CanResolveFor[T any](p *Provider) bool {
	ok, _ := p.CanResolve(TypeOf[T]())
	return ok
}

func Resolve[T any](p *Provider) (T, error) {
	return as[T](p.Resolve(TypeOf[T]()))
}

func Create[T any](p *Provider) (T, error) {
	return as[T](p.Create(TypeOf[T]()))
}

func IoCConstruct[T any](p *Provider, args ...interface{}) (T, error) {
	return as[T](p.IoCConstructWith(TypeOf[T](), args...))
}

func GetSingleton[T any](p *Provider) (T, error) {
	return as[T](p.GetSingleton(TypeOf[T]()))
}

// TryResolve returns the zero T and false when T is not registered.
func TryResolve[T any](p *Provider) (T, bool, error) {
	var zero T

	i, ok, e := p.TryResolve(TypeOf[T]())
	if e != nil || !ok {
		return zero, false, e
	}

	t, e := as[T](i, nil)
	if e != nil {
		return zero, false, e
	}

	return t, true, nil
}

func as[T any](i interface{}, e error) (T, error) {
	var zero T
	if e != nil {
		return zero, e
	}

	t, ok := i.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T is not %s", ErrDependencyResolution, i, TypeOf[T]())
	}

	return t, nil
}

package container

import "reflect"

// Interface is the low-level container consumed by the locator provider.
type Interface interface {
	RegisterFactory(abs reflect.Type, register InstanceRegister)
	RegisterInstance(abs reflect.Type, instance interface{})
	RegisterMapping(abs, concrete reflect.Type)
	GetInstance(abs reflect.Type, args ...interface{}) (interface{}, error)
	GetAllInstances(abs reflect.Type) ([]interface{}, error)
	TryGetInstance(abs reflect.Type) (interface{}, bool, error)
	CanResolve(abs reflect.Type) bool
	WithInjector(h Injector)
	CreateChild() Interface
	Dispose()
}

// NamedArgs are constructor arguments matched to fields by name.
type NamedArgs map[string]interface{}

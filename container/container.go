package container

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/enorith/supports/reflection"
)

var (
	ErrNotConstructible      = errors.New("abstract is not constructible")
	ErrArgumentMismatch      = errors.New("constructor argument matches no field")
	ErrArgumentsNotSupported = errors.New("constructor arguments not supported by registration")
	ErrNilInstance           = errors.New("resolved instance is nil")
	ErrTypeMismatch          = errors.New("resolved instance does not satisfy abstract")
	ErrDisposed              = errors.New("container disposed")
)

// InstanceRegister register instance for container
type InstanceRegister func(c Interface) (reflect.Value, error)

// Injector interface for conditional initializer
type Injector interface {
	Injection(abs reflect.Type, last reflect.Value) (reflect.Value, error)
	When(abs reflect.Type) bool
}

// InjectionFunc injection function
type InjectionFunc func(abs reflect.Type, last reflect.Value) (reflect.Value, error)

type injectionChain []InjectionFunc

// ConditionInjectionFunc  conditional injection function
type ConditionInjectionFunc func(abs reflect.Type) bool

type UnregisteredAbstractError string

func (u UnregisteredAbstractError) Error() string {
	return fmt.Sprintf("unregistered abstract [%s]", string(u))
}

func (ic injectionChain) do(abs reflect.Type, va reflect.Value) (reflect.Value, error) {
	var e error
	for _, v := range ic {
		va, e = v(abs, va)
		if e != nil {
			return reflect.Value{}, e
		}
	}

	return va, nil
}

func conditionInjectionFunc(f ConditionInjectionFunc, i InjectionFunc) InjectionFunc {
	return func(abs reflect.Type, last reflect.Value) (reflect.Value, error) {
		if f(abs) {
			return i(abs, last)
		}

		return last, nil
	}
}

var _ Interface = (*Container)(nil)

type bindKind int

const (
	bindFactory bindKind = iota
	bindMapping
	bindInstance
)

type binding struct {
	kind     bindKind
	register InstanceRegister
	concrete reflect.Type
	instance reflect.Value
}

// Container is a IoC-Container. A child container falls back to its parent
// at lookup time, so later parent registrations stay visible to children.
type Container struct {
	registers map[reflect.Type]*binding

	parent *Container

	injectionChain injectionChain

	disposed bool
}

func (c *Container) WithInjector(h Injector) {
	c.InjectionWith(conditionInjectionFunc(h.When, h.Injection))
}

func (c *Container) InjectionWith(i InjectionFunc) {
	c.injectionChain = append(c.injectionChain, i)
}

func (c *Container) InjectionCondition(f ConditionInjectionFunc, i InjectionFunc) {
	c.InjectionWith(conditionInjectionFunc(f, i))
}

// RegisterFactory binds abs to a register called on every resolution.
func (c *Container) RegisterFactory(abs reflect.Type, register InstanceRegister) {
	c.registers[abs] = &binding{kind: bindFactory, register: register}
}

// RegisterMapping binds abs to concrete, allocated reflectively on every resolution.
// Concrete must be a struct or a pointer to struct.
func (c *Container) RegisterMapping(abs, concrete reflect.Type) {
	c.registers[abs] = &binding{kind: bindMapping, concrete: concrete}
}

// RegisterInstance binds abs to a pre-built instance. Injectors never run for it.
func (c *Container) RegisterInstance(abs reflect.Type, instance interface{}) {
	c.registers[abs] = &binding{kind: bindInstance, instance: reflection.ValueOf(instance)}
}

func (c *Container) lookup(abs reflect.Type) (*binding, bool) {
	for s := c; s != nil; s = s.parent {
		if b, ok := s.registers[abs]; ok {
			return b, true
		}
	}

	return nil, false
}

// Bound reports whether abs is registered on this container, ignoring parents.
func (c *Container) Bound(abs reflect.Type) bool {
	_, o := c.registers[abs]

	return o
}

// CanResolve reports whether abs is registered on this container or an ancestor.
// Nothing is constructed.
func (c *Container) CanResolve(abs reflect.Type) bool {
	if c.disposed || abs == nil {
		return false
	}
	_, ok := c.lookup(abs)

	return ok
}

// GetInstance resolves abs. With args, abs (or the concrete type it maps to)
// is constructed reflectively and each argument fills one field; an
// unregistered struct abstract is constructed directly.
func (c *Container) GetInstance(abs reflect.Type, args ...interface{}) (instance interface{}, e error) {
	defer func() {
		if x := recover(); x != nil {
			instance = nil
			if err, ok := x.(error); ok {
				e = err
			} else {
				e = fmt.Errorf("instance of [%s] panicked: %v", reflection.TypeString(abs), x)
			}
		}
	}()

	if c.disposed {
		return nil, ErrDisposed
	}

	var va reflect.Value
	if b, ok := c.lookup(abs); ok {
		va, e = c.resolve(abs, b, args)
	} else if len(args) > 0 {
		va, e = c.construct(abs, abs, args)
	} else {
		return nil, UnregisteredAbstractError(reflection.TypeString(abs))
	}
	if e != nil {
		return nil, e
	}

	return va.Interface(), nil
}

// GetAllInstances returns the instance of every effective registration for abs.
// Registrations shadowed by a nearer scope are not effective.
func (c *Container) GetAllInstances(abs reflect.Type) ([]interface{}, error) {
	if !c.CanResolve(abs) {
		return []interface{}{}, nil
	}

	i, e := c.GetInstance(abs)
	if e != nil {
		return nil, e
	}

	return []interface{}{i}, nil
}

// TryGetInstance is GetInstance that reports a missing registration as ok=false.
func (c *Container) TryGetInstance(abs reflect.Type) (interface{}, bool, error) {
	if !c.CanResolve(abs) {
		return nil, false, nil
	}

	i, e := c.GetInstance(abs)
	if e != nil {
		return nil, false, e
	}

	return i, true, nil
}

func (c *Container) resolve(abs reflect.Type, b *binding, args []interface{}) (reflect.Value, error) {
	switch b.kind {
	case bindInstance:
		if len(args) > 0 {
			return reflect.Value{}, fmt.Errorf("%w: [%s] is an instance", ErrArgumentsNotSupported, reflection.TypeString(abs))
		}
		return b.instance, nil
	case bindMapping:
		return c.construct(abs, b.concrete, args)
	}

	if len(args) > 0 {
		return reflect.Value{}, fmt.Errorf("%w: [%s] is a factory", ErrArgumentsNotSupported, reflection.TypeString(abs))
	}

	va, e := b.register(c)
	if e != nil {
		return reflect.Value{}, e
	}
	if !va.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: factory of [%s]", ErrNilInstance, reflection.TypeString(abs))
	}
	if !va.Type().AssignableTo(abs) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not [%s]", ErrTypeMismatch, va.Type(), reflection.TypeString(abs))
	}

	return c.injectionChain.do(abs, va)
}

func (c *Container) construct(abs, concrete reflect.Type, args []interface{}) (reflect.Value, error) {
	if concrete.Kind() != reflect.Struct &&
		!(concrete.Kind() == reflect.Ptr && concrete.Elem().Kind() == reflect.Struct) {
		return reflect.Value{}, fmt.Errorf("%w: [%s]", ErrNotConstructible, reflection.TypeString(concrete))
	}

	va := reflect.New(reflection.StructType(concrete))
	if e := fill(va.Elem(), args); e != nil {
		return reflect.Value{}, e
	}

	if concrete.Kind() != reflect.Ptr {
		va = va.Elem()
	}

	return c.injectionChain.do(abs, va)
}

func fill(sv reflect.Value, args []interface{}) error {
	used := make([]bool, sv.NumField())
	for i, arg := range args {
		if named, ok := arg.(NamedArgs); ok {
			if e := fillNamed(sv, named, used); e != nil {
				return e
			}
			continue
		}
		if arg == nil {
			return fmt.Errorf("%w: argument %d of %s is nil", ErrArgumentMismatch, i, sv.Type())
		}

		av := reflect.ValueOf(arg)
		index := -1
		for f := 0; f < sv.NumField(); f++ {
			if !used[f] && sv.Field(f).CanSet() && av.Type().AssignableTo(sv.Field(f).Type()) {
				index = f
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("%w: argument %d of type %s for %s", ErrArgumentMismatch, i, av.Type(), sv.Type())
		}
		sv.Field(index).Set(av)
		used[index] = true
	}

	return nil
}

func fillNamed(sv reflect.Value, named NamedArgs, used []bool) error {
	for name, arg := range named {
		sf, ok := sv.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			return fmt.Errorf("%w: %s has no field %q", ErrArgumentMismatch, sv.Type(), name)
		}

		fv := sv.FieldByIndex(sf.Index)
		if arg == nil {
			fv.Set(reflect.Zero(fv.Type()))
		} else {
			av := reflect.ValueOf(arg)
			if !av.Type().AssignableTo(fv.Type()) {
				return fmt.Errorf("%w: argument %q of type %s for field of type %s", ErrArgumentMismatch, name, av.Type(), fv.Type())
			}
			fv.Set(av)
		}
		if len(sf.Index) == 1 {
			used[sf.Index[0]] = true
		}
	}

	return nil
}

// Invoke calls f with every parameter resolved from the container.
func (c *Container) Invoke(f interface{}) ([]reflect.Value, error) {
	var t reflect.Type
	var fun reflect.Value

	if typ, ok := f.(reflect.Value); ok {
		t = typ.Type()
		fun = typ
	} else {
		t = reflect.TypeOf(f)
		fun = reflect.ValueOf(f)
	}
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("invoke failed, type of %v is invalid, expect func", t)
	}

	var in = make([]reflect.Value, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		argType := t.In(i)
		param, e := c.GetInstance(argType)
		if e != nil {
			return nil, e
		}

		in[i] = reflect.ValueOf(param)
	}

	return fun.Call(in), nil
}

// CreateChild returns a container layered over c.
func (c *Container) CreateChild() Interface {
	child := New()
	child.parent = c

	return child
}

// Dispose drops every registration and the link to the parent.
// Instances already handed out are untouched.
func (c *Container) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.registers = make(map[reflect.Type]*binding)
	c.injectionChain = nil
	c.parent = nil
}

func New() *Container {
	c := &Container{
		registers: make(map[reflect.Type]*binding),
	}

	return c
}

// KeyOf returns the abstract type of abs.
// Abs could be reflect.Type, reflect.Value, a nil pointer to an interface, a struct or a pointer
func KeyOf(abs interface{}) reflect.Type {
	switch a := abs.(type) {
	case nil:
		return nil
	case reflect.Type:
		return a
	case reflect.Value:
		if !a.IsValid() {
			return nil
		}
		return a.Type()
	}

	t := reflection.TypeOf(abs)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		return t.Elem()
	}

	return t
}

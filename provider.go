package locator

import (
	"fmt"
	"reflect"

	"github.com/enorith/locator/container"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Factory builds an instance on demand.
type Factory func() (interface{}, error)

// Provider is a service locator over a container.Interface. It tracks
// singleton registrations, fires registration callbacks and applies the
// property injection Policy to constructed objects.
//
// A Provider is not safe for concurrent use; callers serialize access.
type Provider struct {
	id        string
	container container.Interface
	policy    Policy
	injection PropertyInjection

	callbacks  callbackRegistry
	singletons *singletonTracker

	base     *zap.Logger
	logger   *zap.Logger
	disposed bool
}

// New creates a root provider over c. It fails with ErrConfiguration when
// policy can not be honoured and asks to fail.
//
// The provider takes ownership of c: it installs its property injector on c
// and disposes c on Dispose. Do not share c between providers, each one would
// add its own injector.
func New(c container.Interface, policy Policy, opts ...Option) (*Provider, error) {
	if isNil(c) {
		return nil, ArgumentError("container")
	}

	mode, degraded, e := policy.effective()
	if e != nil {
		return nil, e
	}

	p := &Provider{
		id:         uuid.NewString(),
		container:  c,
		policy:     policy,
		injection:  mode,
		callbacks:  make(callbackRegistry),
		singletons: newSingletonTracker(nil),
		base:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.base.With(zap.String("scope", p.id))

	if degraded {
		p.logger.Warn("marked property injection without a marker, properties will not be injected")
	}
	p.install()

	return p, nil
}

func (p *Provider) install() {
	if p.injection == InjectNone {
		return
	}
	p.container.WithInjector(newPropertyInjector(p.injection, p.policy.Marker, p.container, p.logger))
}

// ScopeID identifies this provider in logs.
func (p *Provider) ScopeID() string {
	return p.id
}

// Policy returns the policy the provider was created with.
func (p *Provider) Policy() Policy {
	return p.policy
}

// RegisterType maps from to the concrete type to, built reflectively on every
// resolution. To must be a struct or pointer to struct assignable to from.
func (p *Provider) RegisterType(from, to reflect.Type) error {
	if from == nil {
		return ArgumentError("from")
	}
	if to == nil {
		return ArgumentError("to")
	}
	if to.Kind() != reflect.Struct && !(to.Kind() == reflect.Ptr && to.Elem().Kind() == reflect.Struct) {
		return fmt.Errorf("%w: [%s] is not a struct or pointer to struct", ErrInvalidArgument, to)
	}
	if !to.AssignableTo(from) {
		return fmt.Errorf("%w: [%s] is not assignable to [%s]", ErrInvalidArgument, to, from)
	}

	if p.disposed {
		return ErrDisposed
	}

	p.container.RegisterMapping(from, to)
	p.singletons.Unmark(from)
	p.registered(from, "type")

	return nil
}

// RegisterFactory registers a transient factory for t.
func (p *Provider) RegisterFactory(t reflect.Type, f Factory) error {
	if t == nil {
		return ArgumentError("t")
	}
	if f == nil {
		return ArgumentError("factory")
	}
	if p.disposed {
		return ErrDisposed
	}

	p.container.RegisterFactory(t, func(container.Interface) (reflect.Value, error) {
		i, e := f()
		if e != nil {
			return reflect.Value{}, e
		}
		return reflect.ValueOf(i), nil
	})
	p.singletons.Unmark(t)
	p.registered(t, "factory")

	return nil
}

// RegisterSingleton registers instance as the only instance of t.
func (p *Provider) RegisterSingleton(t reflect.Type, instance interface{}) error {
	if t == nil {
		return ArgumentError("t")
	}
	if isNil(instance) {
		return ArgumentError("instance")
	}
	if p.disposed {
		return ErrDisposed
	}

	return p.registerSingleton(t, instance)
}

// RegisterSingletonFactory calls f once, now, and registers its result as the
// only instance of t.
func (p *Provider) RegisterSingletonFactory(t reflect.Type, f Factory) error {
	if t == nil {
		return ArgumentError("t")
	}
	if f == nil {
		return ArgumentError("factory")
	}
	if p.disposed {
		return ErrDisposed
	}

	instance, e := f()
	if e != nil {
		return fmt.Errorf("singleton factory of [%s]: %w", t, e)
	}
	if isNil(instance) {
		return fmt.Errorf("singleton factory of [%s]: %w", t, container.ErrNilInstance)
	}

	return p.registerSingleton(t, instance)
}

func (p *Provider) registerSingleton(t reflect.Type, instance interface{}) error {
	if it := reflect.TypeOf(instance); !it.AssignableTo(t) {
		return fmt.Errorf("%w: %s is not assignable to [%s]", ErrInvalidArgument, it, t)
	}

	p.singletons.Mark(t)
	p.container.RegisterInstance(t, instance)
	p.registered(t, "singleton")

	return nil
}

func (p *Provider) registered(t reflect.Type, kind string) {
	p.logger.Debug("registered", zap.Stringer("type", t), zap.String("kind", kind))
	if p.callbacks.FireAndKeep(t) {
		p.logger.Debug("registration callback fired", zap.Stringer("type", t))
	}
}

// CallbackWhenRegistered calls action every time t is registered from now on.
// It replaces any callback already attached to t.
func (p *Provider) CallbackWhenRegistered(t reflect.Type, action func()) error {
	if t == nil {
		return ArgumentError("t")
	}
	if action == nil {
		return ArgumentError("action")
	}
	if p.disposed {
		return ErrDisposed
	}

	p.callbacks.Set(t, action)

	return nil
}

// CanResolve reports whether t is registered. It constructs nothing, and true
// does not guarantee the dependencies of t resolve.
func (p *Provider) CanResolve(t reflect.Type) (bool, error) {
	if t == nil {
		return false, ArgumentError("t")
	}

	return p.container.CanResolve(t), nil
}

// Resolve returns an instance of t according to its registration.
func (p *Provider) Resolve(t reflect.Type) (interface{}, error) {
	if t == nil {
		return nil, ArgumentError("t")
	}

	i, e := p.container.GetInstance(t)

	return i, translate(t, e)
}

// Create is Resolve.
func (p *Provider) Create(t reflect.Type) (interface{}, error) {
	return p.Resolve(t)
}

// IoCConstruct is Resolve; see IoCConstructWith for explicit arguments.
func (p *Provider) IoCConstruct(t reflect.Type) (interface{}, error) {
	return p.Resolve(t)
}

// IoCConstructWith constructs t (or the type it is mapped to) reflectively,
// each argument filling the first unset exported field it is assignable to.
// T does not need to be registered when arguments are given.
func (p *Provider) IoCConstructWith(t reflect.Type, args ...interface{}) (interface{}, error) {
	if t == nil {
		return nil, ArgumentError("t")
	}
	if len(args) == 0 {
		return p.Resolve(t)
	}

	i, e := p.container.GetInstance(t, args...)

	return i, translate(t, e)
}

// IoCConstructNamed constructs t with arguments matched to exported fields by name.
func (p *Provider) IoCConstructNamed(t reflect.Type, args map[string]interface{}) (interface{}, error) {
	if t == nil {
		return nil, ArgumentError("t")
	}
	if args == nil {
		return nil, ArgumentError("arguments")
	}
	if len(args) == 0 {
		return p.Resolve(t)
	}

	return p.IoCConstructWith(t, container.NamedArgs(args))
}

// IoCConstructFrom constructs t from a single argument object, which fills
// the first unset exported field it is assignable to. Use IoCConstructNamed
// to spread values over fields by name.
func (p *Provider) IoCConstructFrom(t reflect.Type, arg interface{}) (interface{}, error) {
	if t == nil {
		return nil, ArgumentError("t")
	}
	if isNil(arg) {
		return nil, ArgumentError("arguments")
	}

	return p.IoCConstructWith(t, arg)
}

// TryResolve is Resolve that reports a missing registration as ok=false
// instead of failing.
func (p *Provider) TryResolve(t reflect.Type) (interface{}, bool, error) {
	if t == nil {
		return nil, false, ArgumentError("t")
	}

	i, ok, e := p.container.TryGetInstance(t)
	if e != nil {
		return nil, false, translate(t, e)
	}

	return i, ok, nil
}

// GetSingleton returns the single instance of t. It fails with
// ErrDependencyResolution when the nearest registration of t is not a
// singleton one, or when more than one instance matches, and
// ErrComponentNotRegistered when nothing is registered.
func (p *Provider) GetSingleton(t reflect.Type) (interface{}, error) {
	if t == nil {
		return nil, ArgumentError("t")
	}

	if !p.singletons.IsMarked(t) {
		if p.container.CanResolve(t) {
			return nil, fmt.Errorf("%w: [%s] is not registered as a singleton", ErrDependencyResolution, t)
		}
		return nil, notRegistered(t)
	}

	all, e := p.container.GetAllInstances(t)
	if e != nil {
		return nil, translate(t, e)
	}

	switch len(all) {
	case 0:
		return nil, notRegistered(t)
	case 1:
		return all[0], nil
	}

	return nil, fmt.Errorf("%w: [%s] is registered %d times", ErrDependencyResolution, t, len(all))
}

// CreateChildContainer returns a provider layered over p. The child resolves
// everything p can, including registrations p gains later, while its own
// registrations stay invisible to p.
func (p *Provider) CreateChildContainer() *Provider {
	child := &Provider{
		id:         uuid.NewString(),
		container:  p.container.CreateChild(),
		policy:     p.policy,
		injection:  p.injection,
		callbacks:  make(callbackRegistry),
		singletons: newSingletonTracker(p.singletons),
		base:       p.base,
	}
	child.logger = child.base.With(zap.String("scope", child.id), zap.String("parent", p.id))
	child.install()

	return child
}

// Dispose releases the container and forgets singletons and callbacks.
// Instances already returned stay usable. Registrations and callbacks
// attached afterwards fail with ErrDisposed. Calling it again does nothing.
func (p *Provider) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true

	p.container.Dispose()
	p.callbacks.Clear()
	p.singletons.Clear()
	p.logger.Debug("disposed")
}

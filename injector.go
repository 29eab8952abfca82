package locator

import (
	"reflect"

	"github.com/enorith/locator/container"
	"go.uber.org/zap"
)

// propertyInjector fills unset fields of freshly constructed objects from the
// container it is attached to. Fields that can not be resolved stay unset.
type propertyInjector struct {
	mode      PropertyInjection
	marker    PropertySelector
	container container.Interface
	logger    *zap.Logger

	// abstracts being resolved through this injector, to break cycles
	resolving map[reflect.Type]int
}

func newPropertyInjector(mode PropertyInjection, marker PropertySelector, c container.Interface, logger *zap.Logger) *propertyInjector {
	return &propertyInjector{
		mode:      mode,
		marker:    marker,
		container: c,
		logger:    logger,
		resolving: make(map[reflect.Type]int),
	}
}

func (pi *propertyInjector) When(abs reflect.Type) bool {
	return pi.mode != InjectNone
}

func (pi *propertyInjector) Injection(abs reflect.Type, last reflect.Value) (reflect.Value, error) {
	var sv reflect.Value
	switch {
	case last.Kind() == reflect.Ptr && !last.IsNil() && last.Elem().Kind() == reflect.Struct:
		sv = last.Elem()
	case last.Kind() == reflect.Struct:
		if !last.CanAddr() {
			cp := reflect.New(last.Type()).Elem()
			cp.Set(last)
			last = cp
		}
		sv = last
	default:
		return last, nil
	}

	pi.enter(abs)
	defer pi.leave(abs)

	owner := sv.Type()
	for i := 0; i < sv.NumField(); i++ {
		field := owner.Field(i)
		fv := sv.Field(i)
		if !fv.CanSet() || !injectable(fv.Kind()) || !fv.IsZero() {
			continue
		}
		if pi.mode == InjectMarkedInterfaceProperties && !pi.marker(owner, field) {
			continue
		}
		if pi.resolving[field.Type] > 0 {
			pi.logger.Debug("property skipped, cyclic dependency",
				zap.Stringer("owner", owner), zap.String("field", field.Name))
			continue
		}
		if !pi.container.CanResolve(field.Type) {
			continue
		}

		v, e := pi.resolve(field.Type)
		if e != nil {
			pi.logger.Debug("property skipped, resolution failed",
				zap.Stringer("owner", owner), zap.String("field", field.Name), zap.Error(e))
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || !rv.Type().AssignableTo(field.Type) {
			continue
		}
		fv.Set(rv)
	}

	return last, nil
}

func (pi *propertyInjector) resolve(t reflect.Type) (interface{}, error) {
	pi.enter(t)
	defer pi.leave(t)

	return pi.container.GetInstance(t)
}

func (pi *propertyInjector) enter(t reflect.Type) {
	pi.resolving[t]++
}

func (pi *propertyInjector) leave(t reflect.Type) {
	if pi.resolving[t]--; pi.resolving[t] <= 0 {
		delete(pi.resolving, t)
	}
}

func injectable(k reflect.Kind) bool {
	return k == reflect.Ptr || k == reflect.Interface || k == reflect.Struct
}

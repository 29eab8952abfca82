package locator

import "reflect"

// callbackRegistry holds at most one registration callback per type.
type callbackRegistry map[reflect.Type]func()

func (r callbackRegistry) Set(t reflect.Type, action func()) {
	r[t] = action
}

// FireAndKeep runs the callback for t, if any, and leaves it attached.
func (r callbackRegistry) FireAndKeep(t reflect.Type) bool {
	action, ok := r[t]
	if ok {
		action()
	}

	return ok
}

func (r callbackRegistry) Clear() {
	for t := range r {
		delete(r, t)
	}
}

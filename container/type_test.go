package container_test

import (
	"reflect"
	"testing"

	"github.com/enorith/locator/container"
)

type FooBar struct {
	Name string
}

type TestG[T interface{}] struct {
	Obj T
}

func (t *TestG[T]) Get() T {
	return t.Obj
}

func TestKeyOf(t *testing.T) {
	tt := []struct {
		name string
		abs  interface{}
		want reflect.Type
	}{
		{"nil", nil, nil},
		{"struct", FooBar{}, reflect.TypeOf(FooBar{})},
		{"ptr", &FooBar{}, reflect.TypeOf(&FooBar{})},
		{"type", reflect.TypeOf(FooBar{}), reflect.TypeOf(FooBar{})},
		{"value", reflect.ValueOf(&FooBar{}), reflect.TypeOf(&FooBar{})},
		{"interface", (*Namer)(nil), namerType},
		{"generic", TestG[FooBar]{}, reflect.TypeOf(TestG[FooBar]{})},
	}

	for _, v := range tt {
		t.Run(v.name, func(t *testing.T) {
			if got := container.KeyOf(v.abs); got != v.want {
				t.Fatalf("key of %v expect %v, got %v", v.abs, v.want, got)
			}
		})
	}
}

func TestTypeGenerics(t *testing.T) {
	ioc := container.New()
	ioc.RegisterFactory(container.KeyOf(FooBar{}), func(c container.Interface) (reflect.Value, error) {
		return reflect.ValueOf(FooBar{Name: "hahahahha"}), nil
	})
	ioc.RegisterMapping(container.KeyOf(TestG[FooBar]{}), container.KeyOf(TestG[FooBar]{}))

	out, e := ioc.Invoke(Handler)
	if e != nil {
		t.Fatal(e)
	}
	if out[0].String() != "" {
		t.Fatalf("unexpected generic object %s", out[0].String())
	}

	g, e := ioc.GetInstance(container.KeyOf(TestG[FooBar]{}), container.NamedArgs{"Obj": FooBar{Name: "named"}})
	if e != nil {
		t.Fatal(e)
	}
	tg := g.(TestG[FooBar])
	if tg.Get().Name != "named" {
		t.Fatalf("unexpected generic object %s", tg.Get().Name)
	}
}

func Handler(tg TestG[FooBar]) string {
	return tg.Get().Name
}

package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubRunner struct{ n int }

func (s stubRunner) ImportFrom(context.Context, string, bool) (int, error) { return s.n, nil }

func TestRegistry(t *testing.T) {
	Clear()
	defer Clear()

	Register(FormatDefinition{
		Info:      FormatInfo{Key: "wishlist", Label: "Wishlists"},
		NewRunner: func(Env) Runner { return stubRunner{n: 3} },
	})
	Register(FormatDefinition{
		Info:      FormatInfo{Key: "todo", Label: "Todo lists"},
		NewRunner: func(Env) Runner { return stubRunner{n: 1} },
	})

	if got, want := Keys(), []string{"todo", "wishlist"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	def, ok := Get("todo")
	if !ok || def.Info.Label != "Todo lists" {
		t.Errorf("Get(todo) = (%+v, %v)", def.Info, ok)
	}

	r, err := NewRunner("wishlist", Env{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if n, _ := r.ImportFrom(context.Background(), "", false); n != 3 {
		t.Errorf("runner count = %d, want 3", n)
	}

	if _, err := NewRunner("csv", Env{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("NewRunner(csv) error = %v, want ErrUnknownFormat", err)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	Clear()
	defer Clear()

	def := FormatDefinition{Info: FormatInfo{Key: "todo"}, NewRunner: func(Env) Runner { return stubRunner{} }}
	Register(def)

	defer func() {
		if recover() == nil {
			t.Error("Register should panic on a duplicate key")
		}
	}()
	Register(def)
}

package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func noopInvoke(tag string) InvokeFunc {
	return func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
		return tag, nil
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Load(ctx context.Context) ([]Handler, error) {
	return nil, errors.New("disk on fire")
}

func TestRegistryEarlierSourceWins(t *testing.T) {
	first := NewStaticSource("first",
		NewHandler(Definition{Name: "weather", Description: "primary"}, noopInvoke("first")),
	)
	second := NewStaticSource("second",
		NewHandler(Definition{Name: "weather", Description: "shadowed"}, noopInvoke("second")),
		NewHandler(Definition{Name: "restaurants"}, noopInvoke("second")),
	)
	r := NewRegistry([]Source{first, second}, WithLogger(quietLogger()))
	r.Reload(context.Background())

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	h, ok := r.Resolve("weather")
	if !ok {
		t.Fatal("weather not registered")
	}
	result, err := h.Invoke(context.Background(), nil, nil)
	if err != nil || result != "first" {
		t.Fatalf("Invoke = (%v, %v), want first source's handler", result, err)
	}
	if h.Definition().Description != "primary" {
		t.Fatalf("Definition kept %q, want the first source's", h.Definition().Description)
	}
}

func TestRegistryFailingSourceSkipped(t *testing.T) {
	working := NewStaticSource("working",
		NewHandler(Definition{Name: "recommend_food"}, noopInvoke("ok")),
	)
	r := NewRegistry([]Source{failingSource{}, working}, WithLogger(quietLogger()))
	r.Reload(context.Background())

	if _, ok := r.Resolve("recommend_food"); !ok {
		t.Fatal("working source's handler missing after a sibling source failed")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistryUnnamedHandlerDropped(t *testing.T) {
	src := NewStaticSource("src",
		NewHandler(Definition{Name: "  "}, noopInvoke("blank")),
		NewHandler(Definition{Name: "named"}, noopInvoke("named")),
	)
	r := NewRegistry([]Source{src}, WithLogger(quietLogger()))
	r.Reload(context.Background())

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if _, ok := r.Resolve("named"); !ok {
		t.Fatal("named handler missing")
	}
}

func TestRegistryReloadReplacesHandlers(t *testing.T) {
	src := NewStaticSource("src",
		NewHandler(Definition{Name: "a"}, noopInvoke("a")),
	)
	r := NewRegistry([]Source{src}, WithLogger(quietLogger()))
	r.Reload(context.Background())
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	// Swapping the source's handlers and reloading drops stale names.
	*src = *NewStaticSource("src",
		NewHandler(Definition{Name: "b"}, noopInvoke("b")),
	)
	r.Reload(context.Background())
	if _, ok := r.Resolve("a"); ok {
		t.Fatal("stale handler survived reload")
	}
	if _, ok := r.Resolve("b"); !ok {
		t.Fatal("new handler missing after reload")
	}
}

func TestRegistryCatalogWireForm(t *testing.T) {
	src := NewStaticSource("src",
		NewHandler(Definition{
			Name:        "get_current_weather",
			Description: "Get the current weather",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{"type": "string"},
				},
			},
		}, noopInvoke("ok")),
	)
	r := NewRegistry([]Source{src}, WithLogger(quietLogger()))
	r.Reload(context.Background())

	catalog := r.Catalog()
	if len(catalog) != 1 {
		t.Fatalf("Catalog() has %d entries, want 1", len(catalog))
	}
	entry := catalog[0]
	if entry["type"] != "function" {
		t.Fatalf(`entry type = %v, want "function"`, entry["type"])
	}
	fn, ok := entry["function"].(map[string]any)
	if !ok {
		t.Fatalf("function field = %T, want map", entry["function"])
	}
	if fn["name"] != "get_current_weather" || fn["description"] != "Get the current weather" {
		t.Fatalf("function payload = %#v", fn)
	}
	if _, ok := fn["parameters"].(map[string]any); !ok {
		t.Fatal("parameters missing from wire form")
	}
}

func TestRegistryCatalogEmpty(t *testing.T) {
	r := NewRegistry(nil, WithLogger(quietLogger()))
	r.Reload(context.Background())
	if got := r.Catalog(); got != nil {
		t.Fatalf("Catalog() = %v, want nil", got)
	}
}

func TestStringArg(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
		key  string
		want string
	}{
		{name: "nil map", args: nil, key: "x", want: ""},
		{name: "present string", args: map[string]any{"x": "y"}, key: "x", want: "y"},
		{name: "missing key", args: map[string]any{"x": "y"}, key: "z", want: ""},
		{name: "numeric value", args: map[string]any{"n": 7.0}, key: "n", want: "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StringArg(tc.args, tc.key); got != tc.want {
				t.Fatalf("StringArg = %q, want %q", got, tc.want)
			}
		})
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "prerender.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "prerender.yaml" {
			t.Errorf("expected context file=prerender.yaml, got %v", file)
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := AssetError("asset missing").WithContext("path", "/style.css").Build()
		wrapped := fmt.Errorf("page /about: %w", inner)

		classified, ok := AsClassified(wrapped)
		if !ok {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryAsset) {
			t.Error("expected asset category")
		}
		if !classified.IsFatal() {
			t.Errorf("expected fatal severity, got %s", classified.Severity())
		}
	})

	t.Run("Unclassified errors", func(t *testing.T) {
		plain := errors.New("boom")
		if _, ok := AsClassified(plain); ok {
			t.Error("plain error must not be classified")
		}
		if HasCategory(plain, CategoryInternal) {
			t.Error("plain error has no category")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := WrapError(originalErr, CategoryMinify, "minify failed").
			Warning().
			WithContext("path", "dist/index.js").
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.IsFatal() {
			t.Error("warning must not be fatal")
		}
	})

	t.Run("WithContext does not mutate receiver", func(t *testing.T) {
		base := RenderError("render failed").Build()
		derived := base.WithContext("route", "/about")

		if _, ok := base.Context().Get("route"); ok {
			t.Error("base context was mutated")
		}
		if v, _ := derived.Context().GetString("route"); v != "/about" {
			t.Errorf("expected route context, got %q", v)
		}
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := DiscoveryError("walk failed").WithContext("path", "a").Build()
		b := DiscoveryError("walk failed").WithContext("path", "b").Build()
		if !errors.Is(a, b) {
			t.Error("expected errors with same category and message to match")
		}
	})
}

func TestErrorContextMerge(t *testing.T) {
	var nilCtx ErrorContext
	other := ErrorContext{"a": 1}
	if got := nilCtx.Merge(other); got["a"] != 1 {
		t.Errorf("merge into nil lost value: %v", got)
	}
	merged := ErrorContext{"a": 1, "b": 2}.Merge(ErrorContext{"b": 3})
	if merged["a"] != 1 || merged["b"] != 3 {
		t.Errorf("unexpected merge result: %v", merged)
	}
}

package services_test

import (
	"errors"
	"strings"
	"testing"

	"chapterfind/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "silence", "detect", "ffmpeg exited", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected ErrExternalTool marker")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to survive")
	}
	for _, want := range []string{"silence", "detect", "ffmpeg exited", "boom"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "classify", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("nil marker should default to ErrTransient")
	}
}

func TestIsFatal(t *testing.T) {
	fatal := services.Wrap(services.ErrConfiguration, "config", "load", "bad profile", nil)
	if !services.IsFatal(fatal) {
		t.Fatal("configuration errors should be fatal")
	}
	soft := services.Wrap(services.ErrExternalTool, "silence", "detect", "exit 1", nil)
	if services.IsFatal(soft) {
		t.Fatal("external tool errors should degrade, not abort")
	}
}

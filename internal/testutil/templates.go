package testutil

import (
	"sync"
	"testing"

	"github.com/dalemusser/clubhub/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	templatesOnce sync.Once
	templatesErr  error
)

// BootTemplates compiles the shared layout plus every template set the test
// binary registered, and installs the engine for templates.Render. Handler
// tests call it so they can assert on rendered pages.
func BootTemplates(t *testing.T) {
	t.Helper()
	templatesOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if templatesErr = eng.Boot(zap.NewNop()); templatesErr == nil {
			templates.UseEngine(eng, zap.NewNop())
		}
	})
	if templatesErr != nil {
		t.Fatalf("boot templates: %v", templatesErr)
	}
}

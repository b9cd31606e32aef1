package loader_test

import (
	"errors"
	"testing"

	"bulk-merge/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(app fiber.Router) error {
	f.loaded = true
	return f.loadErr
}

func TestManager(t *testing.T) {
	app := fiber.New()

	t.Run("LoadsEnabledOnly", func(t *testing.T) {
		enabled := &fakeFeature{name: "a", enabled: true}
		disabled := &fakeFeature{name: "b", enabled: false}

		mgr := loader.NewManager()
		mgr.Register(enabled)
		mgr.Register(disabled)

		assert.NoError(t, mgr.LoadAll(app))
		assert.True(t, enabled.loaded)
		assert.False(t, disabled.loaded)
	})

	t.Run("StopsOnFailure", func(t *testing.T) {
		failing := &fakeFeature{name: "bad", enabled: true, loadErr: errors.New("boom")}
		after := &fakeFeature{name: "after", enabled: true}

		mgr := loader.NewManager()
		mgr.Register(failing)
		mgr.Register(after)

		err := mgr.LoadAll(app)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "bad")
		assert.False(t, after.loaded)
	})
}

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 16, cfg.General.TickIntervalMS)
	assert.True(t, cfg.General.APIEnabled)
	assert.True(t, cfg.Indicator.PrimaryEnabled)
	assert.True(t, cfg.Indicator.SecondaryEnabled)
	assert.False(t, cfg.General.StartPaused)
}

func TestTickIntervalFloor(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval())

	cfg.General.TickIntervalMS = 0
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval())

	cfg.General.TickIntervalMS = 100
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	m := NewManagerWithPath(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, m.Load())
	assert.Equal(t, DefaultConfig(), m.Get())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	m := NewManagerWithPath(path)
	cfg := DefaultConfig()
	cfg.General.TickIntervalMS = 50
	cfg.General.APIPort = 9999
	cfg.Indicator.SecondaryEnabled = false
	m.Set(cfg)
	require.NoError(t, m.Save())

	m2 := NewManagerWithPath(path)
	require.NoError(t, m2.Load())
	got := m2.Get()
	assert.Equal(t, 50, got.General.TickIntervalMS)
	assert.Equal(t, 9999, got.General.APIPort)
	assert.False(t, got.Indicator.SecondaryEnabled)
}

func TestLoadDoesNotMutatePriorSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	m := NewManagerWithPath(path)
	cfg := DefaultConfig()
	cfg.General.TickIntervalMS = 77
	m.Set(cfg)
	snap := m.Get()

	other := NewManagerWithPath(path)
	next := DefaultConfig()
	next.General.TickIntervalMS = 99
	other.Set(next)
	require.NoError(t, other.Save())

	require.NoError(t, m.Load())
	assert.Equal(t, 77, snap.General.TickIntervalMS)
	assert.Equal(t, 99, m.Get().General.TickIntervalMS)
}

func TestConcurrentReloadAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	m := NewManagerWithPath(path)
	cfg := DefaultConfig()
	cfg.General.TickIntervalMS = 77
	m.Set(cfg)
	require.NoError(t, m.Save())

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got := m.Get()
				if got.General.TickIntervalMS != 77 {
					t.Errorf("read torn config: tick=%d", got.General.TickIntervalMS)
					return
				}
				_ = got.TickInterval()
			}
		}()
	}

	for i := 0; i < 500; i++ {
		require.NoError(t, m.Load())
	}
	close(stop)
	wg.Wait()
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	m := NewManagerWithPath(path)
	assert.Error(t, m.Load())
}

func TestChangeCallbackFiresOnSet(t *testing.T) {
	m := NewManagerWithPath(filepath.Join(t.TempDir(), "config.json"))

	fired := 0
	m.RegisterChangeCallback(func() { fired++ })
	m.Set(DefaultConfig())
	assert.Equal(t, 1, fired)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManagerWithPath(path)

	changed := make(chan struct{}, 1)
	m.RegisterChangeCallback(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	require.NoError(t, m.Watch())
	defer m.Close()

	cfg := DefaultConfig()
	cfg.General.TickIntervalMS = 123

	other := NewManagerWithPath(path)
	other.Set(cfg)
	require.NoError(t, other.Save())

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reloaded")
	}
	assert.Equal(t, 123, m.Get().General.TickIntervalMS)
}

package retained

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"freedomclock/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retained.json")
	store, err := NewStore(path)
	require.NoError(t, err)
	return store, path
}

func TestLoad_MissingFileIsFirstPowerOn(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, domain.NewRetainedState(), state)
	require.Equal(t, "--", state.LastPriceText)
	require.Equal(t, -1, state.LastBatteryPercent)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	saved := domain.RetainedState{
		LastPriceText:      "64250.5",
		LastBalanceText:    "0.2145",
		LastBatteryVoltage: 3.92,
		LastBatteryPercent: 84,
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

func TestSave_TruncatesOversizedPayloads(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Save(domain.RetainedState{
		LastPriceText:   "123456789012345678901234567890",
		LastBalanceText: "0.1",
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.LastPriceText, domain.ValueTextLimit)
	require.Equal(t, "0.1", loaded.LastBalanceText)
}

func TestLoad_CorruptFileFallsBackToSentinels(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	state, err := store.Load()
	require.Error(t, err)
	require.Equal(t, domain.NewRetainedState(), state)
}

func TestSave_AtomicReplace(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, store.Save(domain.RetainedState{LastPriceText: "1"}))
	require.NoError(t, store.Save(domain.RetainedState{LastPriceText: "2"}))

	// No temp file left behind.
	_, err := os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "2", loaded.LastPriceText)
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	require.Error(t, err)
}

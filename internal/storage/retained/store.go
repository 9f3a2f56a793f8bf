// Package retained persists the cross-cycle value cache. On the embedded
// original this lives in RTC memory; here it is a small JSON file with the
// same contract: written only after a successful fetch, read as fallback.
package retained

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"freedomclock/internal/domain"
)

// Store reads and writes the RetainedState snapshot at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store, making sure the parent directory exists.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("retained state path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create retained state dir")
		}
	}
	return &Store{path: path}, nil
}

// Load reads the snapshot from disk. A missing file is the first power-on
// case and yields the sentinel state with no error; a corrupt file also
// yields the sentinel state, with an error the caller may log. Load never
// blocks a wake cycle.
func (s *Store) Load() (domain.RetainedState, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewRetainedState(), nil
		}
		return domain.NewRetainedState(), errors.Wrap(err, "read retained state")
	}

	var state domain.RetainedState
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.NewRetainedState(), errors.Wrap(err, "decode retained state")
	}

	state.LastPriceText = domain.TruncateValueText(state.LastPriceText)
	state.LastBalanceText = domain.TruncateValueText(state.LastBalanceText)
	return state, nil
}

// Save writes the snapshot atomically via a temp file so a power loss mid
// write cannot corrupt the previous good state.
func (s *Store) Save(state domain.RetainedState) error {
	state.LastPriceText = domain.TruncateValueText(state.LastPriceText)
	state.LastBalanceText = domain.TruncateValueText(state.LastBalanceText)

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode retained state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write retained state temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist retained state")
	}
	return nil
}

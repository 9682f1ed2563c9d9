package settings

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/kvstore"
)

var ErrInvalidSettings = errors.New("invalid settings")

var validate = validator.New()

// Store owns the AppSettings record
type Store struct {
	mu       sync.RWMutex
	kv       kvstore.Store
	settings domain.AppSettings
}

func New(kv kvstore.Store) *Store {
	return &Store{kv: kv, settings: domain.DefaultSettings()}
}

// Load reads the persisted record over the defaults, so fields missing from
// older records keep their default value. It reports false and persists the
// defaults when nothing readable was stored.
func (s *Store) Load() bool {
	current := domain.DefaultSettings()
	found := kvstore.LoadJSON(s.kv, domain.KeySettings, &current)
	if strings.TrimSpace(current.CompanyName) == "" {
		current.CompanyName = domain.DefaultSettings().CompanyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = current
	if !found {
		s.persist()
	}
	return found
}

func (s *Store) persist() {
	_ = kvstore.SaveJSON(s.kv, domain.KeySettings, s.settings)
}

func (s *Store) Get() domain.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Save replaces the whole record
func (s *Store) Save(v domain.AppSettings) error {
	if err := validate.Struct(v); err != nil {
		return errors.Wrap(ErrInvalidSettings, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = v
	s.persist()
	return nil
}

// Patch updates only the fields present in values, keyed by their JSON
// names. Unknown keys are rejected.
func (s *Store) Patch(values map[string]interface{}) (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &next,
	})
	if err != nil {
		return s.settings, err
	}
	if err := decoder.Decode(values); err != nil {
		return s.settings, errors.Wrap(ErrInvalidSettings, err.Error())
	}
	if err := validate.Struct(next); err != nil {
		return s.settings, errors.Wrap(ErrInvalidSettings, err.Error())
	}
	s.settings = next
	s.persist()
	return next, nil
}

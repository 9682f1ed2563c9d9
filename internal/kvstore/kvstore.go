package kvstore

import (
	"sync/atomic"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNotFound = errors.New("key not found")

// Store is the durable key-value collaborator. Values are opaque JSON
// snapshots, writes are last-write-wins.
type Store interface {
	// Get returns ErrNotFound when key was never written
	Get(key string) ([]byte, error)

	// Set replaces the value of key and notifies subscribers
	Set(key string, value []byte) error

	// Subscribe registers fn for every successful Set of key.
	// The returned func detaches it.
	Subscribe(key string, fn func(value []byte)) (cancel func())

	Close() error
}

// notifier fans out key writes through an event bus, one topic per key
type notifier struct {
	bus EventBus.Bus
}

func newNotifier() notifier {
	return notifier{bus: EventBus.New()}
}

func topic(key string) string {
	return "kv:" + key
}

func (n notifier) Subscribe(key string, fn func(value []byte)) func() {
	var active atomic.Bool
	active.Store(true)
	handler := func(value []byte) {
		if active.Load() {
			fn(value)
		}
	}
	if err := n.bus.Subscribe(topic(key), handler); err != nil {
		zap.L().Error("kv subscribe failed", zap.String("key", key), zap.Error(err))
	}
	return func() { active.Store(false) }
}

func (n notifier) publish(key string, value []byte) {
	if n.bus.HasCallback(topic(key)) {
		n.bus.Publish(topic(key), value)
	}
}

// LoadJSON decodes the value of key into out. It reports false, leaving out
// untouched, when the key is absent, unreadable or corrupt.
func LoadJSON(s Store, key string, out interface{}) bool {
	data, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		zap.L().Info("storage key absent, using default", zap.String("key", key))
		return false
	}
	if err != nil {
		zap.L().Error("storage read failed, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		zap.L().Warn("storage value corrupt, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SaveJSON encodes v under key. Failures are logged and returned; callers
// keep their in-memory state either way.
func SaveJSON(s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		err = errors.Wrapf(err, "encode %s", key)
		zap.L().Error("storage write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	if err := s.Set(key, data); err != nil {
		err = errors.Wrapf(err, "write %s", key)
		zap.L().Error("storage write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/kvstore"
)

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	s := New(kv)
	assert.False(t, s.Load())
	assert.Equal(t, domain.DefaultSettings(), s.Get())

	_, err := kv.Get(domain.KeySettings)
	assert.NoError(t, err)
}

func TestLoadMergesLegacyRecord(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(domain.KeySettings, []byte(`{"companyName":"Loja da Ana","enableStockAlerts":false}`)))
	s := New(kv)
	assert.True(t, s.Load())

	got := s.Get()
	assert.Equal(t, "Loja da Ana", got.CompanyName)
	assert.False(t, got.EnableStockAlerts)
	assert.True(t, got.SoundEnabled)
	assert.Equal(t, domain.DefaultReceiptFooter, got.ReceiptFooter)
}

func TestSaveValidates(t *testing.T) {
	s := New(kvstore.NewMemoryStore())
	v := domain.DefaultSettings()
	v.CompanyName = ""
	assert.ErrorIs(t, s.Save(v), ErrInvalidSettings)

	v.CompanyName = "Shop"
	v.SoundEnabled = false
	require.NoError(t, s.Save(v))
	assert.False(t, s.Get().SoundEnabled)
}

func TestPatch(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	s := New(kv)
	s.Load()

	got, err := s.Patch(map[string]interface{}{"soundEnabled": "false", "phone": "555-0101"})
	require.NoError(t, err)
	assert.False(t, got.SoundEnabled)
	assert.Equal(t, "555-0101", got.Phone)
	assert.Equal(t, domain.DefaultSettings().CompanyName, got.CompanyName)

	_, err = s.Patch(map[string]interface{}{"darkMode": true})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	_, err = s.Patch(map[string]interface{}{"companyName": ""})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, "555-0101", s.Get().Phone)

	reloaded := New(kv)
	reloaded.Load()
	assert.False(t, reloaded.Get().SoundEnabled)
}

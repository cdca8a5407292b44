package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// mapConfig is a driven.ConfigStore over decoded TOML values.
type mapConfig map[string]any

var _ driven.ConfigStore = mapConfig(nil)

func newMapConfig() mapConfig { return mapConfig{} }

func (m mapConfig) set(key string, value any) { m[key] = value }

func (m mapConfig) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapConfig) GetString(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m mapConfig) GetInt(key string) int {
	return int(m.GetFloat(key))
}

func (m mapConfig) GetFloat(key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m mapConfig) GetBool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (m mapConfig) GetStringSlice(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (mapConfig) Load() error  { return nil }
func (mapConfig) Path() string { return "" }

func newTestSettingsService(store mapConfig, env map[string]string) *SettingsService {
	service := NewSettingsService(store)
	service.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return service
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettingsService(newMapConfig(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReadsAllFields(t *testing.T) {
	store := newMapConfig()
	store.set("database.driver", "SQLite")
	store.set("database.dsn", "postgres://localhost/autopecas")
	store.set("database.sqlite_dir", "/var/lib/autopecas")
	store.set("marketplace.base_url", "http://localhost:8080/")
	store.set("marketplace.token_url", "http://localhost:8080/oauth/token")
	store.set("marketplace.site_id", "MLA")
	store.set("marketplace.requests_per_second", 2.5)
	store.set("marketplace.timeout", "45s")
	store.set("marketplace.optimistic_edits", false)
	store.set("runner.control_file", "/etc/autopecas/.env")
	store.set("runner.fallback_interval", "10s")
	store.set("log.level", "debug")
	store.set("log.format", "json")
	store.set("kafka.brokers", []any{"kafka:9092"})
	store.set("kafka.topic", "listing-outcomes")
	store.set("pictures.base_dir", "/srv/fotos")
	store.set("pictures.endpoint", "minio:9000")
	store.set("pictures.access_key", "access")
	store.set("pictures.secret_key", "secret")
	store.set("pictures.bucket", "fotos")
	store.set("pictures.use_ssl", true)
	store.set("processors.categories", false)
	store.set("receipts.dir", "/srv/retorno")
	store.set("metrics.addr", ":9100")

	settings, err := newTestSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DatabaseDriverSQLite, settings.Database.Driver)
	assert.Equal(t, "postgres://localhost/autopecas", settings.Database.DSN)
	assert.Equal(t, "/var/lib/autopecas", settings.Database.SQLiteDir)
	assert.Equal(t, "http://localhost:8080", settings.Marketplace.BaseURL)
	assert.Equal(t, "http://localhost:8080/oauth/token", settings.Marketplace.TokenURL)
	assert.Equal(t, "MLA", settings.Marketplace.SiteID)
	assert.InDelta(t, 2.5, settings.Marketplace.RequestsPerSecond, 0.0001)
	assert.Equal(t, 45*time.Second, settings.Marketplace.Timeout)
	assert.False(t, settings.Marketplace.OptimisticEdits)
	assert.Equal(t, "/etc/autopecas/.env", settings.Runner.ControlFile)
	assert.Equal(t, 10*time.Second, settings.Runner.FallbackInterval)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, "json", settings.Log.Format)
	assert.Equal(t, []string{"kafka:9092"}, settings.Kafka.Brokers)
	assert.Equal(t, "listing-outcomes", settings.Kafka.Topic)
	assert.True(t, settings.Kafka.Enabled())
	assert.Equal(t, "/srv/fotos", settings.Pictures.BaseDir)
	assert.True(t, settings.Pictures.StagingEnabled())
	assert.True(t, settings.Pictures.UseSSL)
	assert.True(t, settings.Processors.Products)
	assert.False(t, settings.Processors.Categories)
	assert.True(t, settings.Processors.Status)
	assert.Equal(t, "/srv/retorno", settings.ReceiptsDir)
	assert.Equal(t, ":9100", settings.MetricsAddr)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := newMapConfig()
	store.set("database.driver", "mysql")
	store.set("marketplace.timeout", "soon")
	store.set("runner.fallback_interval", "-5s")

	settings, err := newTestSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Database.Driver, settings.Database.Driver)
	assert.Equal(t, defaults.Marketplace.Timeout, settings.Marketplace.Timeout)
	assert.Equal(t, defaults.Runner.FallbackInterval, settings.Runner.FallbackInterval)
}

func TestSettingsService_Get_NumericDurationIsSeconds(t *testing.T) {
	store := newMapConfig()
	store.set("marketplace.timeout", int64(12))
	store.set("runner.fallback_interval", 0.5)

	settings, err := newTestSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, settings.Marketplace.Timeout)
	assert.Equal(t, 500*time.Millisecond, settings.Runner.FallbackInterval)
}

func TestSettingsService_Get_ZeroRequestsPerSecondIsKept(t *testing.T) {
	store := newMapConfig()
	store.set("marketplace.requests_per_second", 0)

	settings, err := newTestSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Zero(t, settings.Marketplace.RequestsPerSecond)
}

func TestSettingsService_Get_EnvOverridesDSN(t *testing.T) {
	store := newMapConfig()
	store.set("database.dsn", "postgres://file/db")

	settings, err := newTestSettingsService(store, map[string]string{
		EnvDatabaseDSN: "postgres://env/db",
	}).Get()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", settings.Database.DSN)

	settings, err = newTestSettingsService(store, map[string]string{EnvDatabaseDSN: ""}).Get()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/db", settings.Database.DSN)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "postgres without dsn",
			wantErr: true,
		},
		{
			name:   "postgres with dsn",
			values: map[string]any{"database.dsn": "postgres://localhost/db"},
		},
		{
			name: "postgres with env dsn",
			env:  map[string]string{EnvDatabaseDSN: "postgres://env/db"},
		},
		{
			name:    "sqlite without dir",
			values:  map[string]any{"database.driver": "sqlite"},
			wantErr: true,
		},
		{
			name:   "sqlite with dir",
			values: map[string]any{"database.driver": "sqlite", "database.sqlite_dir": "/tmp"},
		},
		{
			name: "negative pacing",
			values: map[string]any{
				"database.dsn":                    "postgres://localhost/db",
				"marketplace.requests_per_second": -1.0,
			},
			wantErr: true,
		},
		{
			name: "brokers without topic",
			values: map[string]any{
				"database.dsn":  "postgres://localhost/db",
				"kafka.brokers": []string{"kafka:9092"},
			},
			wantErr: true,
		},
		{
			name: "picture endpoint without bucket",
			values: map[string]any{
				"database.dsn":      "postgres://localhost/db",
				"pictures.endpoint": "minio:9000",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapConfig()
			for k, v := range tt.values {
				store.set(k, v)
			}

			err := newTestSettingsService(store, tt.env).Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

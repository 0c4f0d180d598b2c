package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Catalog: CatalogConfig{DataPath: "/srv/guide/data", FetchTimeout: 10 * time.Second},
		Storage: StorageConfig{Backend: BackendBadger, MetadataPath: "/var/lib/guide"},
		HTTP:    HTTPConfig{RateLimitRPS: 5, RateLimitBurst: 20},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"PRODUCTION", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"WARN", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_DataSource(t *testing.T) {
	t.Run("neither", func(t *testing.T) {
		cfg := validConfig()
		cfg.Catalog.DataPath = ""
		assert.ErrorContains(t, cfg.Validate(), "exactly one")
	})

	t.Run("both", func(t *testing.T) {
		cfg := validConfig()
		cfg.Catalog.BaseURL = "https://guide.example"
		assert.ErrorContains(t, cfg.Validate(), "exactly one")
	})

	t.Run("url only", func(t *testing.T) {
		cfg := validConfig()
		cfg.Catalog.DataPath = ""
		cfg.Catalog.BaseURL = "https://guide.example"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad scheme", func(t *testing.T) {
		cfg := validConfig()
		cfg.Catalog.DataPath = ""
		cfg.Catalog.BaseURL = "ftp://guide.example"
		assert.Error(t, cfg.Validate())
	})

	t.Run("watch needs directory", func(t *testing.T) {
		cfg := validConfig()
		cfg.Catalog.DataPath = ""
		cfg.Catalog.BaseURL = "https://guide.example"
		cfg.Catalog.Watch = true
		assert.ErrorContains(t, cfg.Validate(), "DATA_WATCH")
	})
}

func TestValidate_StorageBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = BackendRedis
	cfg.Storage.RedisAddr = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Backend = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Backend = BackendBadger
	cfg.Storage.MetadataPath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoad_FlagsBeatEnvironment(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_PATH", "/ignored")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load([]string{"-data-path", dataDir, "-env-file", filepath.Join(dataDir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.Catalog.DataPath)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Catalog.FetchTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CATALOG_FETCH_TIMEOUT", "soon")

	_, err := Load([]string{"-data-path", t.TempDir(), "-env-file", ""})
	assert.ErrorContains(t, err, "CATALOG_FETCH_TIMEOUT")
}

func TestLoad_BaseURLTrailingSlashTrimmed(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load([]string{"-data-base-url", "https://guide.example/", "-env-file", ""})
	require.NoError(t, err)
	assert.Equal(t, "https://guide.example", cfg.Catalog.BaseURL)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/guide/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "guide", "data"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("GUIDE_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "GUIDE_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "GUIDE_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "GUIDE_TEST_UNSET", "default"))
}

func TestGetBoolAndIntConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("YES", "", false))
	assert.False(t, getBoolConfigValue("nope", "", true))
	assert.True(t, getBoolConfigValue("", "", true))

	assert.Equal(t, 7, getIntConfigValue("7", "", 1))
	assert.Equal(t, 1, getIntConfigValue("seven", "", 1))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.mk", "https://b.mk"}, splitList(" https://a.mk, ,https://b.mk "))
	assert.Nil(t, splitList(""))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nGUIDE_ENV_A=alpha\nGUIDE_ENV_B = \"beta\"\nGUIDE_ENV_C=kept\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("GUIDE_ENV_C", "existing")
	t.Setenv("GUIDE_ENV_A", "")
	t.Setenv("GUIDE_ENV_B", "")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "alpha", os.Getenv("GUIDE_ENV_A"))
	assert.Equal(t, "beta", os.Getenv("GUIDE_ENV_B"))
	assert.Equal(t, "existing", os.Getenv("GUIDE_ENV_C"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))

	assert.ErrorContains(t, loadEnvFile(path), "line 1")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"QRATTEND_ENV", "QRATTEND_HTTP_ADDR", "QRATTEND_GRPC_ADDR",
	"QRATTEND_DB_DRIVER", "QRATTEND_DB_PATH", "DB_URL", "DB_USERNAME", "DB_PASSWORD",
	"QRATTEND_CAMERA", "QRATTEND_CAMERA_INDEX", "QRATTEND_CAMERA_DIR",
	"QRATTEND_FRAME_WIDTH", "QRATTEND_FRAME_HEIGHT", "QRATTEND_CAMERA_FPS",
	"QRATTEND_COOLDOWN_MS", "QRATTEND_READ_BACKOFF_MS",
	"QRATTEND_DISPLAY_DURING_COOLDOWN", "QRATTEND_POLL_INTERVAL_MS",
}

// clearEnv unsets every variable FromEnv reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./data/qrattendance.db", cfg.DBPath)
	assert.Equal(t, "imagedir", cfg.Camera)
	assert.Equal(t, "./frames", cfg.CameraDir)
	assert.Equal(t, 1280, cfg.FrameWidth)
	assert.Equal(t, 720, cfg.FrameHeight)
	assert.Equal(t, 10, cfg.CameraFPS)
	assert.Equal(t, 2*time.Second, cfg.Cooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadBackoff)
	assert.False(t, cfg.DisplayDuringCooldown)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)

	if runtime.GOOS == "windows" {
		assert.Equal(t, 0, cfg.CameraIndex)
	} else {
		assert.Equal(t, 1, cfg.CameraIndex)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QRATTEND_ENV", "PROD")
	t.Setenv("QRATTEND_DB_DRIVER", "postgres")
	t.Setenv("QRATTEND_CAMERA", "gstreamer")
	t.Setenv("QRATTEND_CAMERA_INDEX", "0")
	t.Setenv("QRATTEND_COOLDOWN_MS", "3500")
	t.Setenv("QRATTEND_DISPLAY_DURING_COOLDOWN", "true")
	t.Setenv("QRATTEND_POLL_INTERVAL_MS", "750")

	cfg := FromEnv()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "gstreamer", cfg.Camera)
	assert.Equal(t, 0, cfg.CameraIndex)
	assert.Equal(t, 3500*time.Millisecond, cfg.Cooldown)
	assert.True(t, cfg.DisplayDuringCooldown)
	assert.Equal(t, 750*time.Millisecond, cfg.PollInterval)
}

func TestFromEnv_FailSoft(t *testing.T) {
	clearEnv(t)
	t.Setenv("QRATTEND_ENV", "staging")
	t.Setenv("QRATTEND_DB_DRIVER", "mysql")
	t.Setenv("QRATTEND_CAMERA", "opencv")
	t.Setenv("QRATTEND_COOLDOWN_MS", "-5")
	t.Setenv("QRATTEND_DISPLAY_DURING_COOLDOWN", "maybe")

	cfg := FromEnv()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "imagedir", cfg.Camera)
	assert.Equal(t, 2*time.Second, cfg.Cooldown)
	assert.False(t, cfg.DisplayDuringCooldown)
}

func TestFromEnv_EmptyGRPCAddrDisables(t *testing.T) {
	clearEnv(t)
	t.Setenv("QRATTEND_GRPC_ADDR", "")

	assert.Empty(t, FromEnv().GRPCAddr)
}

func TestPostgresDSN(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "url without credentials",
			cfg:  Config{DBURL: "postgres://db:5432/attendance?sslmode=disable", DBUsername: "station", DBPassword: "s3cret"},
			want: "postgres://station:s3cret@db:5432/attendance?sslmode=disable",
		},
		{
			name: "url with credentials wins",
			cfg:  Config{DBURL: "postgres://admin:pw@db/attendance", DBUsername: "station", DBPassword: "s3cret"},
			want: "postgres://admin:pw@db/attendance",
		},
		{
			name: "key value",
			cfg:  Config{DBURL: "host=db dbname=attendance", DBUsername: "station", DBPassword: "two words"},
			want: "host=db dbname=attendance user=station password='two words'",
		},
		{
			name: "no credentials",
			cfg:  Config{DBURL: "postgres://db/attendance"},
			want: "postgres://db/attendance",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.PostgresDSN())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("QRATTEND_HTTP_ADDR", ":7000")
	os.Unsetenv("DB_URL")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DB_URL=postgres://db/attendance\nQRATTEND_HTTP_ADDR=:9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DB_URL") })

	require.NoError(t, LoadDotEnv(path))

	cfg := FromEnv()
	assert.Equal(t, "postgres://db/attendance", cfg.DBURL)
	assert.Equal(t, ":7000", cfg.HTTPAddr, "existing environment wins over .env")
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

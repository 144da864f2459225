package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string // "dev" | "prod"
	HTTPAddr string
	GRPCAddr string // empty disables the health server

	// DB
	DBDriver   string // "sqlite" | "postgres"
	DBPath     string // e.g. "./data/qrattendance.db"
	DBURL      string
	DBUsername string
	DBPassword string

	// Camera
	Camera      string // "imagedir" | "gstreamer"
	CameraIndex int
	CameraDir   string
	FrameWidth  int
	FrameHeight int
	CameraFPS   int

	// Capture loop
	Cooldown              time.Duration
	ReadBackoff           time.Duration
	DisplayDuringCooldown bool

	// Poll loop
	PollInterval time.Duration
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding anything already set in the environment.  Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("QRATTEND_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	driver := strings.ToLower(getenvDefault("QRATTEND_DB_DRIVER", "sqlite"))
	if driver != "postgres" {
		driver = "sqlite"
	}

	camera := strings.ToLower(getenvDefault("QRATTEND_CAMERA", "imagedir"))
	if camera != "gstreamer" {
		camera = "imagedir"
	}

	return Config{
		Env:      env,
		HTTPAddr: getenvDefault("QRATTEND_HTTP_ADDR", ":8080"),
		GRPCAddr: getenvAllowEmpty("QRATTEND_GRPC_ADDR", ":9090"),

		DBDriver:   driver,
		DBPath:     getenvDefault("QRATTEND_DB_PATH", "./data/qrattendance.db"),
		DBURL:      strings.TrimSpace(os.Getenv("DB_URL")),
		DBUsername: os.Getenv("DB_USERNAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),

		Camera:      camera,
		CameraIndex: getenvInt("QRATTEND_CAMERA_INDEX", defaultCameraIndex()),
		CameraDir:   getenvDefault("QRATTEND_CAMERA_DIR", "./frames"),
		FrameWidth:  getenvInt("QRATTEND_FRAME_WIDTH", 1280),
		FrameHeight: getenvInt("QRATTEND_FRAME_HEIGHT", 720),
		CameraFPS:   getenvInt("QRATTEND_CAMERA_FPS", 10),

		Cooldown:              getenvMillis("QRATTEND_COOLDOWN_MS", 2000),
		ReadBackoff:           getenvMillis("QRATTEND_READ_BACKOFF_MS", 500),
		DisplayDuringCooldown: getenvBool("QRATTEND_DISPLAY_DURING_COOLDOWN", false),

		PollInterval: getenvMillis("QRATTEND_POLL_INTERVAL_MS", 2000),
	}
}

// PostgresDSN merges DB_USERNAME and DB_PASSWORD into DB_URL.  Both URL
// ("postgres://host/db") and key=value DSNs are accepted; credentials already
// present in DB_URL win.
func (c Config) PostgresDSN() string {
	dsn := c.DBURL
	if c.DBUsername == "" && c.DBPassword == "" {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil || u.User != nil {
			return dsn
		}
		if c.DBPassword != "" {
			u.User = url.UserPassword(c.DBUsername, c.DBPassword)
		} else {
			u.User = url.User(c.DBUsername)
		}
		return u.String()
	}

	if c.DBUsername != "" && !strings.Contains(dsn, "user=") {
		dsn = strings.TrimSpace(dsn + " user=" + quoteDSN(c.DBUsername))
	}
	if c.DBPassword != "" && !strings.Contains(dsn, "password=") {
		dsn = strings.TrimSpace(dsn + " password=" + quoteDSN(c.DBPassword))
	}
	return dsn
}

// defaultCameraIndex picks the built-in webcam: index 0 on Windows, 1
// elsewhere where 0 is commonly a virtual or IR device.
func defaultCameraIndex() int {
	if runtime.GOOS == "windows" {
		return 0
	}
	return 1
}

func quoteDSN(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// getenvAllowEmpty returns def only when key is unset, so an explicit empty
// value can switch a listener off.
func getenvAllowEmpty(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvMillis(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Millisecond
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

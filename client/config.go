package client

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"bubblearena/internal/errors"
)

const (
	// TicksPerSecond 默认模拟频率，与渲染帧率解耦
	TicksPerSecond = 60
	// DefaultWelcomeTimeout 连接建立后等待 Welcome 的时间，超时则重连
	DefaultWelcomeTimeout = 5 * time.Second
)

// Config 客户端配置：环境变量（可选 .env）提供默认值，命令行参数覆盖
type Config struct {
	ServerURL      string
	Name           string
	Role           string
	MapPath        string
	AssetDir       string
	TileSize       float64
	TicksPerSecond int
	WelcomeTimeout time.Duration
	LogFile        string
	LogLevel       string
	AdminAddr      string
}

// LoadConfig 读取配置；envFile 不存在时忽略
func LoadConfig(envFile string) Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			Log.Warnf("load %s: %v", envFile, err)
		}
	}

	return Config{
		ServerURL:      getEnv("BUBBLE_SERVER_URL", "ws://localhost:8080/ws"),
		Name:           getEnv("BUBBLE_NAME", defaultName()),
		Role:           getEnv("BUBBLE_ROLE", "1"),
		MapPath:        getEnv("BUBBLE_MAP", "maps/arena.txt"),
		AssetDir:       getEnv("BUBBLE_ASSETS", ""),
		TileSize:       parseFloat(getEnv("BUBBLE_TILE_SIZE", ""), 40),
		TicksPerSecond: parseInt(getEnv("BUBBLE_TPS", ""), TicksPerSecond),
		WelcomeTimeout: parseDuration(getEnv("BUBBLE_WELCOME_TIMEOUT", ""), DefaultWelcomeTimeout),
		LogFile:        getEnv("BUBBLE_LOG_FILE", "client.log"),
		LogLevel:       getEnv("BUBBLE_LOG_LEVEL", "info"),
		AdminAddr:      getEnv("BUBBLE_ADMIN_ADDR", ""),
	}
}

// Validate 检查必填项与取值范围
func (c Config) Validate() error {
	switch {
	case c.ServerURL == "":
		return errors.InvalidArgument("server url is required")
	case !strings.HasPrefix(c.ServerURL, "ws://") && !strings.HasPrefix(c.ServerURL, "wss://"):
		return errors.InvalidArgumentf("server url %q must use ws:// or wss://", c.ServerURL)
	case strings.TrimSpace(c.Name) == "":
		return errors.InvalidArgument("display name is required")
	case c.MapPath == "":
		return errors.InvalidArgument("map path is required")
	case c.TileSize <= 0:
		return errors.InvalidArgumentf("tile size must be positive, got %v", c.TileSize)
	case c.TicksPerSecond <= 0 || c.TicksPerSecond > 1000:
		return errors.InvalidArgumentf("ticks per second must be in (0, 1000], got %d", c.TicksPerSecond)
	case c.WelcomeTimeout < 0:
		return errors.InvalidArgument("welcome timeout must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.InvalidArgumentf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// TickInterval 每个 Tick 的时长
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TicksPerSecond)
}

func defaultName() string {
	return "player-" + uuid.New().String()[:8]
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 世界与服务端的全部可调参数（启动时加载，运行期可经 /admin/config 修改）
type Config struct {
	Port string `json:"port"`

	MaxPlayers     int `json:"maxPlayers"`
	MaxProjectiles int `json:"maxProjectiles"`
	MaxEnemies     int `json:"maxEnemies"`
	MaxItems       int `json:"maxItems"`

	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	TickPeriod         time.Duration `json:"tickPeriod"`
	CollisionRadius    float64       `json:"collisionRadius"`
	PickupRadius       float64       `json:"pickupRadius"`
	ProjectileSpeed    float64       `json:"projectileSpeed"`
	HitDamage          int           `json:"hitDamage"`
	EnemyHealth        int           `json:"enemyHealth"`
	ProjectileTTLTicks int           `json:"projectileTtlTicks"` // 0 表示子弹永不过期

	SendQueueSize    int  `json:"sendQueueSize"`
	MaxMessageBytes  int  `json:"maxMessageBytes"`
	ReportRejections bool `json:"reportRejections"`

	Seed int64 `json:"seed"` // 0 表示按时间取种

	LogFile  string `json:"logFile"`
	LogLevel string `json:"logLevel"`
}

// DefaultConfig 返回与线上默认行为一致的配置
func DefaultConfig() Config {
	return Config{
		Port:            "8080",
		MaxPlayers:      100,
		MaxProjectiles:  100,
		MaxEnemies:      5,
		MaxItems:        5,
		WorldWidth:      1000,
		WorldHeight:     1000,
		TickPeriod:      time.Second,
		CollisionRadius: 20,
		PickupRadius:    50,
		ProjectileSpeed: 5,
		HitDamage:       25,
		EnemyHealth:     100,
		SendQueueSize:   256,
		MaxMessageBytes: 4096,
		LogFile:         "app.log",
		LogLevel:        "info",
	}
}

// Addr 监听地址，例如 ":8080"
func (c Config) Addr() string {
	return ":" + c.Port
}

// Validate 校验配置，启动和热更新共用
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("maxPlayers", float64(c.MaxPlayers))
	positive("maxProjectiles", float64(c.MaxProjectiles))
	positive("maxEnemies", float64(c.MaxEnemies))
	positive("maxItems", float64(c.MaxItems))
	positive("worldWidth", c.WorldWidth)
	positive("worldHeight", c.WorldHeight)
	positive("tickPeriod", float64(c.TickPeriod))
	positive("collisionRadius", c.CollisionRadius)
	positive("pickupRadius", c.PickupRadius)
	positive("projectileSpeed", c.ProjectileSpeed)
	positive("hitDamage", float64(c.HitDamage))
	positive("enemyHealth", float64(c.EnemyHealth))
	positive("sendQueueSize", float64(c.SendQueueSize))
	positive("maxMessageBytes", float64(c.MaxMessageBytes))
	if c.ProjectileTTLTicks < 0 {
		errs = append(errs, fmt.Errorf("projectileTtlTicks must not be negative, got %d", c.ProjectileTTLTicks))
	}
	return errors.Join(errs...)
}

// LoadConfig 默认值 → 可选 .env 文件 → 进程环境变量
// envFile 为空或文件不存在时跳过 .env
func LoadConfig(envFile string) (Config, error) {
	cfg := DefaultConfig()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.Port = strings.TrimSpace(v)
	}
	if v, ok := lookup("LOG_FILE"); ok && v != "" {
		c.LogFile = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_PLAYERS", &c.MaxPlayers},
		{"MAX_PROJECTILES", &c.MaxProjectiles},
		{"MAX_ENEMIES", &c.MaxEnemies},
		{"MAX_ITEMS", &c.MaxItems},
		{"HIT_DAMAGE", &c.HitDamage},
		{"ENEMY_HEALTH", &c.EnemyHealth},
		{"PROJECTILE_TTL_TICKS", &c.ProjectileTTLTicks},
		{"SEND_QUEUE_SIZE", &c.SendQueueSize},
		{"MAX_MESSAGE_BYTES", &c.MaxMessageBytes},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.key, err)
		}
		*e.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"WORLD_WIDTH", &c.WorldWidth},
		{"WORLD_HEIGHT", &c.WorldHeight},
		{"COLLISION_RADIUS", &c.CollisionRadius},
		{"PICKUP_RADIUS", &c.PickupRadius},
		{"PROJECTILE_SPEED", &c.ProjectileSpeed},
	}
	for _, e := range floats {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.key, err)
		}
		*e.dst = f
	}

	if v, ok := lookup("TICK_PERIOD"); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse TICK_PERIOD: %w", err)
		}
		c.TickPeriod = d
	}
	if v, ok := lookup("REPORT_REJECTIONS"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse REPORT_REJECTIONS: %w", err)
		}
		c.ReportRejections = b
	}
	if v, ok := lookup("WORLD_SEED"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("parse WORLD_SEED: %w", err)
		}
		c.Seed = n
	}
	return nil
}

// ConfigPatch 为 POST /admin/config 的局部更新载荷，nil 字段保持不变
type ConfigPatch struct {
	MaxPlayers         *int     `json:"maxPlayers,omitempty"`
	MaxProjectiles     *int     `json:"maxProjectiles,omitempty"`
	MaxEnemies         *int     `json:"maxEnemies,omitempty"`
	MaxItems           *int     `json:"maxItems,omitempty"`
	WorldWidth         *float64 `json:"worldWidth,omitempty"`
	WorldHeight        *float64 `json:"worldHeight,omitempty"`
	TickPeriod         *string  `json:"tickPeriod,omitempty"` // Go duration，例如 "500ms"
	CollisionRadius    *float64 `json:"collisionRadius,omitempty"`
	PickupRadius       *float64 `json:"pickupRadius,omitempty"`
	ProjectileSpeed    *float64 `json:"projectileSpeed,omitempty"`
	HitDamage          *int     `json:"hitDamage,omitempty"`
	EnemyHealth        *int     `json:"enemyHealth,omitempty"`
	ProjectileTTLTicks *int     `json:"projectileTtlTicks,omitempty"`
	ReportRejections   *bool    `json:"reportRejections,omitempty"`
}

// Apply 返回打过补丁并校验通过的新配置；失败时原配置不变
func (p ConfigPatch) Apply(c Config) (Config, error) {
	next := c
	if p.MaxPlayers != nil {
		next.MaxPlayers = *p.MaxPlayers
	}
	if p.MaxProjectiles != nil {
		next.MaxProjectiles = *p.MaxProjectiles
	}
	if p.MaxEnemies != nil {
		next.MaxEnemies = *p.MaxEnemies
	}
	if p.MaxItems != nil {
		next.MaxItems = *p.MaxItems
	}
	if p.WorldWidth != nil {
		next.WorldWidth = *p.WorldWidth
	}
	if p.WorldHeight != nil {
		next.WorldHeight = *p.WorldHeight
	}
	if p.TickPeriod != nil {
		d, err := time.ParseDuration(*p.TickPeriod)
		if err != nil {
			return c, fmt.Errorf("parse tickPeriod: %w", err)
		}
		next.TickPeriod = d
	}
	if p.CollisionRadius != nil {
		next.CollisionRadius = *p.CollisionRadius
	}
	if p.PickupRadius != nil {
		next.PickupRadius = *p.PickupRadius
	}
	if p.ProjectileSpeed != nil {
		next.ProjectileSpeed = *p.ProjectileSpeed
	}
	if p.HitDamage != nil {
		next.HitDamage = *p.HitDamage
	}
	if p.EnemyHealth != nil {
		next.EnemyHealth = *p.EnemyHealth
	}
	if p.ProjectileTTLTicks != nil {
		next.ProjectileTTLTicks = *p.ProjectileTTLTicks
	}
	if p.ReportRejections != nil {
		next.ReportRejections = *p.ReportRejections
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

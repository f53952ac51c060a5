package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MainConfig 当前生效的配置，Load 成功后更新
var MainConfig = Default()

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Icons    IconsConfig    `mapstructure:"icons"`
	Log      LogConfig      `mapstructure:"log"`
	Client   ClientConfig   `mapstructure:"client"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin 运行模式 debug/release/test
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite / postgres / mysql
	Path     string `mapstructure:"path"`   // sqlite 文件
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Debug    bool   `mapstructure:"debug"`
}

type IconsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text / json
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":5000", Mode: "release"},
		Database: DatabaseConfig{Driver: "sqlite", Path: "webgis.db", Host: "127.0.0.1"},
		Icons:    IconsConfig{Dir: "./static/icons"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Client:   ClientConfig{BaseURL: "http://127.0.0.1:5000", Timeout: 30 * time.Second},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.debug", false)
	v.SetDefault("icons.dir", d.Icons.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.timeout", d.Client.Timeout)
}

// NewViper 创建读取 SKETCHMAP_ 环境变量的 viper 实例，path 为空时在当前目录查找 sketchmap.*
func NewViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SKETCHMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sketchmap")
		v.AddConfigPath(".")
	}
	return v
}

// Load 读取配置文件，文件不存在时使用默认值与环境变量
func Load(path string) (Config, *viper.Viper, error) {
	v := NewViper(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return Config{}, nil, err
	}
	MainConfig = cfg
	return cfg, v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	return cfg, nil
}

// Watch 配置文件变化时重新解析并回调
func Watch(v *viper.Viper, onChange func(Config)) {
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			return
		}
		MainConfig = cfg
		onChange(cfg)
	})
	v.WatchConfig()
}

// DSN 按驱动生成连接串
func (c DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", c.Host, c.Username, c.Password, c.Dbname, c.Port)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", c.Username, c.Password, c.Host, c.Port, c.Dbname)
	}
	return c.Path
}

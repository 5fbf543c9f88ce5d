package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	CSRF     CSRFConfig     `mapstructure:"csrf"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

// UpstreamConfig 定义了讨论站点相关的配置
type UpstreamConfig struct {
	BaseURL     string        `mapstructure:"baseURL"`
	VotePath    string        `mapstructure:"votePath"`
	CommentPath string        `mapstructure:"commentPath"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"userAgent"`
}

// CSRFConfig 定义了CSRF令牌所在的cookie
type CSRFConfig struct {
	CookieName string `mapstructure:"cookieName"`
	// Token 可选；处理本地保存的页面时站点没有机会下发cookie，可在这里预置
	Token string `mapstructure:"token"`
}

// SessionConfig 定义了登录会话cookie，留空则以匿名身份请求
type SessionConfig struct {
	CookieName string `mapstructure:"cookieName"`
	Value      string `mapstructure:"value"`
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// EnvPrefix 是环境变量覆盖配置时使用的前缀，例如 ENHANCER_UPSTREAM_BASEURL
const EnvPrefix = "ENHANCER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.baseURL", "http://localhost:8000")
	v.SetDefault("upstream.votePath", "/vote/")
	v.SetDefault("upstream.commentPath", "/post/comment/")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.userAgent", "discussion-enhancer/1.0")
	v.SetDefault("csrf.cookieName", "csrftoken")
	v.SetDefault("csrf.token", "")
	v.SetDefault("session.cookieName", "sessionid")
	v.SetDefault("session.value", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Default 返回只包含默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// 默认值全部是基础类型，这里不会失败
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig 函数负责查找、加载和解析配置文件
// path 为空时在 ./config 与当前目录中查找 config.yaml，找不到文件时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// 1. 设置配置文件名和类型
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 2. 允许通过环境变量覆盖配置
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// 4. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

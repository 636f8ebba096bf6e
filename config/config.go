// Package config 读取应用配置（JSON/YAML），环境变量可覆盖。
package config

import (
	"strings"
	"time"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/viper"
)

const (
	DefaultWorkflowURL = "https://xingchen-api.xf-yun.com/workflow/v1/chat/completions"
	DefaultUploadURL   = "https://xingchen-api.xf-yun.com/workflow/v1/upload_file"

	envPrefix = "NEWSGEN"
)

// Config 保留原始 config.json 的键名（"API Key" 等），其余为服务端扩展项。
type Config struct {
	APIKey      string        `mapstructure:"api key"`
	APISecret   string        `mapstructure:"api secret"`
	FlowID      string        `mapstructure:"api flowid"`
	URL         string        `mapstructure:"url"`
	UploadURL   string        `mapstructure:"upload_url"`
	ServerAddr  string        `mapstructure:"server_addr"`
	Backend     string        `mapstructure:"backend"`
	LogLevel    string        `mapstructure:"log_level"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	LLM         LLMConfig     `mapstructure:"llm"`
	History     HistoryConfig `mapstructure:"history"`
}

// LLMConfig 供 openai 兼容的对话后端使用。
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// HistoryConfig 选择历史记录的持久化槽位。
type HistoryConfig struct {
	Backend           string `mapstructure:"backend"`
	Dir               string `mapstructure:"dir"`
	SQLitePath        string `mapstructure:"sqlite_path"`
	RedisAddr         string `mapstructure:"redis_addr"`
	RedisPassword     string `mapstructure:"redis_password"`
	RedisDB           int    `mapstructure:"redis_db"`
	FirestoreProject  string `mapstructure:"firestore_project"`
	FirestoreDatabase string `mapstructure:"firestore_database"`
	Capacity          int    `mapstructure:"capacity"`
}

// Credentials 是一次生成/上传动作所需的凭据。
type Credentials struct {
	Key    string
	Secret string
	FlowID string
	URL    string
}

// Bearer 返回 "Bearer key:secret" 形式的 Authorization 头。
func (c Credentials) Bearer() string {
	return "Bearer " + c.Key + ":" + c.Secret
}

// Load 读取配置文件；文件缺失或格式错误都直接返回错误。
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", " ", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, goerr.Wrap(err, "failed to read config file",
				goerr.V("path", path), goerr.T(apperr.TagConfig))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, goerr.Wrap(err, "failed to decode config",
			goerr.V("path", path), goerr.T(apperr.TagConfig))
	}
	cfg.trim()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api key", "")
	v.SetDefault("api secret", "")
	v.SetDefault("api flowid", "")
	v.SetDefault("url", DefaultWorkflowURL)
	v.SetDefault("upload_url", DefaultUploadURL)
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("backend", "workflow")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_timeout", "120s")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")

	v.SetDefault("history.backend", "file")
	v.SetDefault("history.dir", "data")
	v.SetDefault("history.sqlite_path", "data/history.sqlite")
	v.SetDefault("history.redis_addr", "localhost:6379")
	v.SetDefault("history.redis_password", "")
	v.SetDefault("history.redis_db", 0)
	v.SetDefault("history.firestore_project", "")
	v.SetDefault("history.firestore_database", "(default)")
	v.SetDefault("history.capacity", 50)
}

func (c *Config) trim() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.APISecret = strings.TrimSpace(c.APISecret)
	c.FlowID = strings.TrimSpace(c.FlowID)
	c.URL = strings.TrimSpace(c.URL)
	c.UploadURL = strings.TrimSpace(c.UploadURL)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))
}

// Validate 检查凭据是否齐全；缺项属于配置错误。
func (c Credentials) Validate() error {
	if c.Key == "" || c.Secret == "" || c.FlowID == "" {
		return goerr.New("API 配置缺失，请检查 config.json 中的 API Key / API Secret / API flowid",
			goerr.T(apperr.TagConfig))
	}
	if c.URL == "" {
		return goerr.New("workflow url is empty", goerr.T(apperr.TagConfig))
	}
	return nil
}

// Credentials 返回工作流凭据及其校验结果。凭据总是按配置填充，
// 缺项时调用方仍可持有它，每次生成时再由 Validate 拦下。
func (c Config) Credentials() (Credentials, error) {
	creds := Credentials{Key: c.APIKey, Secret: c.APISecret, FlowID: c.FlowID, URL: c.URL}
	return creds, creds.Validate()
}

// UploadAuthorization 返回上传时使用的 Authorization 头。
func (c Config) UploadAuthorization() (string, error) {
	if c.APIKey == "" || c.APISecret == "" {
		return "", goerr.New("API密钥未在config.json中配置", goerr.T(apperr.TagConfig))
	}
	return Credentials{Key: c.APIKey, Secret: c.APISecret}.Bearer(), nil
}

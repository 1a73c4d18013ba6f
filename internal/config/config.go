package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-payments-engine/pkg/logger"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

// EnvPrefix 環境變數前綴，例如 ENGINE_LOG_LEVEL
const EnvPrefix = "ENGINE_"

// Config 引擎設定
// 優先順序: 環境變數 > YAML 檔 > 預設值 (CLI flag 由 main 最後覆寫)
type Config struct {
	Engine  EngineConfig  `yaml:"engine" envPrefix:"ENGINE_"`
	Log     logger.Config `yaml:"log" envPrefix:"LOG_"`
	Journal JournalConfig `yaml:"journal" envPrefix:"JOURNAL_"`
	MySQL   MySQLConfig   `yaml:"mysql" envPrefix:"MYSQL_"`
}

// 執行模式，對應 usecase 的三種 Processor 包裝
const (
	ModeDirect    = "direct"    // 直接呼叫 Processor
	ModeMutex     = "mutex"     // MutexProcessor
	ModeSequencer = "sequencer" // Sequencer (LMAX)
)

// EngineConfig 帳本執行模式
type EngineConfig struct {
	Mode string `yaml:"mode" env:"MODE"`
	// Buffer Sequencer 輸送帶長度
	Buffer int `yaml:"buffer" env:"BUFFER"`
}

// JournalConfig 已套用動作的稽核日誌，Path 為空表示不寫
type JournalConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// MySQLConfig 執行結束後將帳戶快照寫入 MySQL
type MySQLConfig struct {
	Enabled      bool `yaml:"enabled" env:"ENABLED"`
	mysql.Config `yaml:",inline"`
}

// Default 回傳預設設定
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Mode:   ModeDirect,
			Buffer: 1000,
		},
		Log: logger.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 載入設定
//
// 參數:
//
//	path: YAML 檔路徑，空字串表示不讀檔
//
// 回傳:
//
//	Config: 設定
//	error: 讀檔或解析錯誤
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.MySQL.Enabled {
		// 補全 MySQL 預設配置 (如果 yaml 沒寫)
		cfg.MySQL.ApplyDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查必要欄位
func (c Config) Validate() error {
	switch c.Engine.Mode {
	case ModeDirect, ModeMutex, ModeSequencer:
	default:
		return fmt.Errorf("unknown engine mode %q", c.Engine.Mode)
	}
	if c.Engine.Buffer <= 0 {
		return errors.New("engine buffer must be positive")
	}
	if c.MySQL.Enabled && (c.MySQL.Host == "" || c.MySQL.DBName == "") {
		return errors.New("mysql enabled but host or db_name missing")
	}
	return nil
}

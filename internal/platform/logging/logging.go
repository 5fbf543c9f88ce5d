package logging

import (
	"fmt"

	"github.com/SlpAus/discussion-enhancer/internal/platform/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 根据日志配置构建zap日志器。
// 默认使用生产环境的JSON输出，development 为真时改用控制台格式。
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	// 补丁后的HTML写到stdout，日志统一走stderr
	zc.OutputPaths = []string{"stderr"}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("无法初始化日志器: %w", err)
	}
	return logger, nil
}

// OrNop 在传入nil时返回一个不输出任何内容的日志器。
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Package log 提供基于 zerolog 的日志工具，支持 stderr 和文件输出（lumberjack 轮转）.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/filevault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 使用全局配置初始化 logger，只生效一次.
func Init() {
	initOnce.Do(func() {
		cfg := configs.GetConfig()
		logger = build(cfg.Log, cfg.Server.Debug)
		log.Logger = logger
	})
}

// Setup 以显式配置替换全局 logger，命令行入口在读取配置后调用.
func Setup(cfg configs.LogConfig, debug bool) {
	initOnce.Do(func() {})

	logger = build(cfg, debug)
	log.Logger = logger
}

func build(cfg configs.LogConfig, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.Level)
		}

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	var writers []io.Writer

	if cfg.JSON {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.Kitchen
		}))
	}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With()
	if debug {
		ctx = ctx.Caller()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return ctx.Timestamp().Logger()
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	Init()

	return &logger
}

// Component 返回带 component 字段的子 logger.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// GinWriter 把 Gin 文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	default:
		w.logger.Debug().Msg(msg)
	}

	return len(p), nil
}

package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName  = "logs"
	defaultLogFilename = "realcpa.log"
)

// Options 日志输出配置
type Options struct {
	Dir        string
	Filename   string
	Level      string // 为空时 debug 模式用 debug，其余用 info
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Stdout     bool // 写文件的同时输出到标准输出
}

func (o Options) rolling(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(o.MaxSizeMB, 100),
		MaxBackups: orDefault(o.MaxBackups, 7),
		MaxAge:     orDefault(o.MaxAgeDays, 30),
		Compress:   o.Compress,
	}
}

// L 全局日志，Init 之前为 nil
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallback     *zap.Logger
)

// Init 构建并替换全局日志
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	zap.ReplaceGlobals(L)
	return L
}

// New 按运行模式组装输出：debug 只写控制台，其余写滚动文件（JSON）
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(options.Level, debug)
	return zap.New(zapcore.NewTee(buildCores(debug, level, options)...), zap.AddCaller(), zap.AddCallerSkip(1))
}

func buildCores(debug bool, level zap.AtomicLevel, options Options) []zapcore.Core {
	stdout := zapcore.Lock(os.Stdout)
	if debug {
		return []zapcore.Core{zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), stdout, level)}
	}

	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig())
	path, err := resolveLogFilePath(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v, writing to stdout\n", err)
		return []zapcore.Core{zapcore.NewCore(jsonEncoder, stdout, level)}
	}
	cores := []zapcore.Core{zapcore.NewCore(jsonEncoder, zapcore.AddSync(options.rolling(path)), level)}
	if options.Stdout {
		cores = append(cores, zapcore.NewCore(jsonEncoder.Clone(), stdout, level))
	}
	return cores
}

// Z 全局日志，未初始化时返回控制台日志
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	fallbackOnce.Do(func() {
		fallback = New("debug", Options{Level: "info"})
	})
	return fallback
}

// S sugared 版本
func S() *zap.SugaredLogger { return Z().Sugar() }

// SW 附带固定字段
func SW(kv ...interface{}) *zap.SugaredLogger {
	return S().With(kv...)
}

// StdLogger 适配标准库 log，供启动阶段 Fatalf 使用
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Sync 刷新缓冲
func Sync() {
	_ = Z().Sync()
}

func Debugw(message string, kv ...interface{}) { S().Debugw(message, kv...) }
func Infow(message string, kv ...interface{})  { S().Infow(message, kv...) }
func Warnw(message string, kv ...interface{})  { S().Warnw(message, kv...) }
func Errorw(message string, kv ...interface{}) { S().Errorw(message, kv...) }

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func resolveLevel(raw string, debug bool) zap.AtomicLevel {
	if lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw))); err == nil && strings.TrimSpace(raw) != "" {
		return zap.NewAtomicLevelAt(lvl)
	}
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

// resolveLogFilePath 目录为空时使用 <工作目录>/logs，并确保目录存在
func resolveLogFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		dir = filepath.Join(wd, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultLogFilename
	}
	return filepath.Join(dir, name), nil
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

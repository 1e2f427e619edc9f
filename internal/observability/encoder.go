// internal/observability/encoder.go
package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
)

// ANSI color codes for the terminal.
const (
	colorBlack   = "\x1b[30m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorReset   = "\x1b[0m"
)

// colorMap translates friendly names to ANSI codes.
var colorMap = map[string]string{
	"black":   colorBlack,
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    colorBlue,
	"magenta": colorMagenta,
	"cyan":    colorCyan,
	"white":   colorWhite,
}

func paint(color, s string) string {
	code, ok := colorMap[color]
	if !ok {
		return s
	}
	return code + s + colorReset
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// newEncoder selects the log encoder: "console" renders the colorized
// single-line format, anything else structured JSON.
func newEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	if cfg.Format != "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	encCfg.EncodeLevel = levelColorEncoder(cfg.Colors)
	encCfg.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return &categoryEncoder{Encoder: zapcore.NewConsoleEncoder(encCfg)}
}

// levelColorEncoder paints the capitalized level with the configured color.
func levelColorEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  colors.Debug,
		zapcore.InfoLevel:   colors.Info,
		zapcore.WarnLevel:   colors.Warn,
		zapcore.ErrorLevel:  colors.Error,
		zapcore.DPanicLevel: colors.DPanic,
		zapcore.PanicLevel:  colors.Panic,
		zapcore.FatalLevel:  colors.Fatal,
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(paint(byLevel[level], level.CapitalString()))
	}
}

// categoryEncoder prefixes console messages with the behaviour category,
// painted in the category's color hint. The category is picked up from
// logger context (Tagged) or from the entry's own fields.
type categoryEncoder struct {
	zapcore.Encoder
	category string
}

func (e *categoryEncoder) AddString(key, value string) {
	if key == categoryKey {
		e.category = value
	}
	e.Encoder.AddString(key, value)
}

func (e *categoryEncoder) Clone() zapcore.Encoder {
	return &categoryEncoder{Encoder: e.Encoder.Clone(), category: e.category}
}

func (e *categoryEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	category := e.category
	for _, f := range fields {
		if f.Key == categoryKey && f.Type == zapcore.StringType {
			category = f.String
		}
	}
	if category != "" {
		var b strings.Builder
		b.WriteString(paint(Category(category).ColorHint(), "["+category+"]"))
		b.WriteByte(' ')
		b.WriteString(ent.Message)
		ent.Message = b.String()
	}
	return e.Encoder.EncodeEntry(ent, fields)
}

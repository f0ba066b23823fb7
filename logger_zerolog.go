package account

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to Logger
type ZerologLogger struct {
	zl zerolog.Logger
}

var _ Logger = ZerologLogger{}

// NewZerologLogger tags every entry with the component name
func NewZerologLogger(zl zerolog.Logger, component string) ZerologLogger {
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}
	return ZerologLogger{zl: zl}
}

func (z ZerologLogger) Debug(format string, args ...any) {
	z.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

func (z ZerologLogger) Info(format string, args ...any) {
	z.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (z ZerologLogger) Warn(format string, args ...any) {
	z.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (z ZerologLogger) Error(format string, args ...any) {
	z.zl.Error().Msg(fmt.Sprintf(format, args...))
}

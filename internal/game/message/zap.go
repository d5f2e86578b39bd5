package message

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapSink writes each event as a structured log line.
// Failure-class keys log at warn, combat exchanges and daily ticks at debug,
// everything else at info.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a sink writing to logger.
//
// Precondition: logger must be non-nil.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// Emit logs key and params.
func (s *ZapSink) Emit(key Key, params Params) {
	fields := make([]zap.Field, 0, len(params)+1)
	fields = append(fields, zap.String("event", string(key)))
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fields = append(fields, zap.Any(k, params[k]))
	}
	if ce := s.logger.Check(levelFor(key), "game event"); ce != nil {
		ce.Write(fields...)
	}
}

func levelFor(key Key) zapcore.Level {
	k := string(key)
	switch {
	case key == CultivationDaily || key == CombatExchange:
		return zapcore.DebugLevel
	case strings.Contains(k, "fail"), key == CombatDefeat, key == TribulationRealmRegress,
		key == MeridianHeartDemon, key == MeridianPurityDamaged:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/cultivation/internal/game/message"
)

func TestRecorder_CopiesParams(t *testing.T) {
	rec := message.NewRecorder()
	params := message.Params{"qi": 1.5}
	rec.Emit(message.CultivationManual, params)
	params["qi"] = 99.0

	ev, ok := rec.Last(message.CultivationManual)
	require.True(t, ok)
	assert.Equal(t, 1.5, ev.Params["qi"])
}

func TestRecorder_KeysAndReset(t *testing.T) {
	rec := message.NewRecorder()
	rec.Emit(message.MeridianOpenAttempt, nil)
	rec.Emit(message.MeridianOpened, message.Params{"index": 0})
	assert.Equal(t, []message.Key{message.MeridianOpenAttempt, message.MeridianOpened}, rec.Keys())

	_, ok := rec.Last(message.CombatVictory)
	assert.False(t, ok)

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestFanout_ForwardsToAll(t *testing.T) {
	a, b := message.NewRecorder(), message.NewRecorder()
	message.Fanout{a, b, message.Discard}.Emit(message.EventKarma, message.Params{"delta": 5})
	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestOrDiscard(t *testing.T) {
	assert.Equal(t, message.Discard, message.OrDiscard(nil))
	rec := message.NewRecorder()
	assert.Same(t, rec, message.OrDiscard(rec))
}

func TestZapSink_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := message.NewZapSink(zap.New(core))

	sink.Emit(message.CultivationDaily, message.Params{"gained": 0.11})
	sink.Emit(message.TribulationFailed, message.Params{"kind": "lightning"})
	sink.Emit(message.BreakthroughSuccess, message.Params{"realm": "qi_condensation"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, "game event", entries[2].Message)
	assert.Equal(t, "breakthrough.success", entries[2].ContextMap()["event"])
	assert.Equal(t, "qi_condensation", entries[2].ContextMap()["realm"])
}

func TestZapSink_SkipsDisabledLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	message.NewZapSink(zap.New(core)).Emit(message.CombatExchange, nil)
	assert.Zero(t, logs.Len())
}

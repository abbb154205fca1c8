package log

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	l := splitLevel("INFO|WARN")
	assert.True(t, l.Info)
	assert.True(t, l.Warn)
	assert.False(t, l.Debug)
	assert.False(t, l.Error)

	l = splitLevel("debug|error|nonsense")
	assert.True(t, l.Debug)
	assert.True(t, l.Error)
	assert.False(t, l.Info)
}

func TestNewSubLogger(t *testing.T) {
	t.Parallel()
	_, err := NewSubLogger("")
	assert.ErrorIs(t, err, errEmptyLoggerName)

	sl, err := NewSubLogger("testNewSubLogger")
	require.NoError(t, err)
	assert.Equal(t, "TESTNEWSUBLOGGER", sl.Name())

	_, err = NewSubLogger("TESTNEWSUBLOGGER")
	assert.ErrorIs(t, err, errSubLoggerAlreadyExists)

	assert.Panics(t, func() { MustNewSubLogger("testNewSubLogger") })
}

func TestSubLoggerLevels(t *testing.T) {
	t.Parallel()
	sl := MustNewSubLogger("testSubLoggerLevels")
	out := &syncBuffer{}
	sl.SetOutput(out)
	sl.SetLevels(splitLevel("WARN"))
	assert.Equal(t, Levels{Warn: true}, sl.GetLevels())

	Info(sl, "hidden")
	Warnf(sl, "visible %d", 1)
	got := out.String()
	assert.NotContains(t, got, "hidden")
	assert.Contains(t, got, "visible 1")
	assert.Contains(t, got, "[WARN]")
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestNilSubLogger(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Infoln(nil, "nothing")
		Errorf(nil, "nothing %v", 1)
	})
}

func TestOutputWriter(t *testing.T) {
	t.Parallel()
	a, b := &syncBuffer{}, &syncBuffer{}
	o := &outputWriter{}
	require.NoError(t, o.add("a", a))
	require.NoError(t, o.add("b", b))
	assert.ErrorIs(t, o.add("a", b), errOutputAlreadyAdded)
	assert.ErrorIs(t, o.add("c", a), errOutputAlreadyAdded)
	assert.Equal(t, "a|b", o.String())

	n, err := o.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())

	require.NoError(t, o.remove("b"))
	assert.ErrorIs(t, o.remove("b"), errOutputNotFound)
	_, err = o.Write([]byte("!"))
	require.NoError(t, err)
	assert.Equal(t, "hello", b.String())
	assert.Equal(t, "hello!", a.String())
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestOutputWriterKeepsWritingAfterFailure(t *testing.T) {
	t.Parallel()
	ok := &syncBuffer{}
	o := &outputWriter{}
	require.NoError(t, o.add("short", shortWriter{}))
	require.NoError(t, o.add("ok", ok))
	_, err := o.Write([]byte("line"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, "line", ok.String())
}

func TestRecorder(t *testing.T) {
	t.Parallel()
	watched := MustNewSubLogger("testRecorderWatched")
	ignored := MustNewSubLogger("testRecorderIgnored")
	watched.SetOutput(io.Discard)
	ignored.SetOutput(io.Discard)
	watched.SetLevels(Levels{})

	r := NewRecorder(watched)
	Warnf(watched, "depth %d", 3)
	Infoln(watched, "info")
	Warnln(ignored, "elsewhere")
	r.Close()
	Warnln(watched, "after close")

	warnings := r.Entries(LevelWarn)
	require.Len(t, warnings, 1, "disabled levels still reach hooks")
	assert.Equal(t, Entry{Level: LevelWarn, SubLogger: "TESTRECORDERWATCHED", Message: "depth 3"}, warnings[0])
	assert.Len(t, r.Entries(""), 2)
}

func TestHookConsumes(t *testing.T) {
	t.Parallel()
	sl := MustNewSubLogger("testHookConsumes")
	out := &syncBuffer{}
	sl.SetOutput(out)
	remove := AddHook(func(_, subLogger, _ string) bool {
		return subLogger == "TESTHOOKCONSUMES"
	})
	Errorln(sl, "swallowed")
	remove()
	Errorln(sl, "written")
	assert.NotContains(t, out.String(), "swallowed")
	assert.Contains(t, out.String(), "written")
	assert.NotNil(t, AddHook(nil))
}

func TestGetWriters(t *testing.T) {
	t.Parallel()
	_, err := getWriters(nil)
	assert.ErrorIs(t, err, errSubloggerConfigIsNil)

	_, err = getWriters(&SubLoggerConfig{Output: "stdout|stderr"})
	assert.NoError(t, err)

	_, err = getWriters(&SubLoggerConfig{Output: "carrier-pigeon"})
	assert.ErrorIs(t, err, errUnhandledOutputWriter)
}

func TestGenDefaultSettings(t *testing.T) {
	t.Parallel()
	cfg := GenDefaultSettings()
	require.NotNil(t, cfg.Enabled)
	assert.True(t, *cfg.Enabled)
	assert.Equal(t, "[INFO]", cfg.AdvancedSettings.Headers.Info)
	l := newLogger(cfg)
	assert.True(t, l.ShowLogSystemName)
	assert.Equal(t, spacer, l.Spacer)
}

func TestSetupSubLoggersUnknown(t *testing.T) {
	t.Parallel()
	err := SetupSubLoggers([]SubLoggerConfig{{Name: "does-not-exist", Output: "stdout", Level: "INFO"}})
	assert.Error(t, err)
}

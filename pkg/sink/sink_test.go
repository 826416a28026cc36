package sink

import (
	"bytes"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newSet(t *testing.T) *intervalset.Set {
	t.Helper()
	s := intervalset.New()
	assert.NoError(t, s.Add(3, 4))
	assert.NoError(t, s.Add(10, 17))
	return s
}

func TestLogr(t *testing.T) {
	var got []string
	l := funcr.New(func(prefix, args string) {
		got = append(got, args)
	}, funcr.Options{})

	newSet(t).Print(Logr(l))

	assert.Equal(t, 1, len(got))
	assert.Contains(t, got[0], `"msg"="[3, 4) [10, 17)"`)
}

func TestZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	newSet(t).Print(Zap(zap.New(core)))
	intervalset.New().Print(Zap(zap.New(core)))

	entries := logs.AllUntimed()
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "[3, 4) [10, 17)", entries[0].Message)
	assert.Equal(t, "[Empty range)", entries[1].Message)
}

func TestCollect(t *testing.T) {
	var got []string
	s := newSet(t)
	s.Print(Collect(&got))
	s.Print(Discard)
	s.Print(Collect(&got))
	assert.Equal(t, []string{"[3, 4) [10, 17)", "[3, 4) [10, 17)"}, got)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	newSet(t).Print(Writer(&buf))
	intervalset.New().Print(Writer(&buf))
	assert.Equal(t, "[3, 4) [10, 17)\n[Empty range)\n", buf.String())
}

package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/unkn0wn-root/lrucache"
)

func TestLogrusLoggerForwardsFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Warn("l2 demotion failed", lrucache.Fields{"key": "l2:user:0:1"})
	l.Debug("nil key rejected", lrucache.Fields{"op": "set"})

	if n := len(hook.AllEntries()); n != 2 {
		t.Fatalf("got %d entries want 2", n)
	}
	first := hook.AllEntries()[0]
	if first.Level != logrus.WarnLevel || first.Message != "l2 demotion failed" {
		t.Fatalf("first=%v %q", first.Level, first.Message)
	}
	if first.Data["key"] != "l2:user:0:1" || first.Data["component"] != "lrucache" {
		t.Fatalf("first data=%v", first.Data)
	}
	if last := hook.LastEntry(); last.Level != logrus.DebugLevel || last.Data["op"] != "set" {
		t.Fatalf("last=%v %v", last.Level, last.Data)
	}
}

package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopResolveHooks{}
	r.OnResolveStart(ctx, "com.example.pkg", "1.0.0")
	r.OnRegistryQuery(ctx, "https://package.openupm.com", "com.example.pkg", true)
	r.OnResolveComplete(ctx, "com.example.pkg", "1.0.0", 3, 0, time.Second)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "packument")
	c.OnCacheMiss(ctx, "packument")
	c.OnCacheSet(ctx, "packument", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "package.openupm.com", "/com.example.pkg")
	h.OnResponse(ctx, "GET", "package.openupm.com", "/com.example.pkg", 200, time.Second)
	h.OnError(ctx, "GET", "package.openupm.com", "/com.example.pkg", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customResolve := &testResolveHooks{}
	SetResolveHooks(customResolve)
	if Resolve() != customResolve {
		t.Error("SetResolveHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Reset() should restore NoopResolveHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testResolveHooks{}
	SetResolveHooks(custom)
	SetResolveHooks(nil)

	if Resolve() != custom {
		t.Error("SetResolveHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	LogHooks{Logger: logger}.Install()

	ctx := context.Background()
	Resolve().OnRegistryQuery(ctx, "https://package.openupm.com", "com.example.pkg", false)
	Cache().OnCacheMiss(ctx, "packument")
	HTTP().OnResponse(ctx, "GET", "package.openupm.com", "/com.example.pkg", 404, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"registry query", "com.example.pkg", "cache miss", "status=404"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testResolveHooks struct{ NoopResolveHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

package grab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/grab/internal/cache"
	"github.com/conn-castle/grab/internal/config"
	"github.com/conn-castle/grab/internal/launch"
	"github.com/conn-castle/grab/internal/testutil"
)

type fakeStrategy struct {
	mu    sync.Mutex
	calls []launch.Command
	code  int
	err   error
}

func (f *fakeStrategy) Launch(_ context.Context, cmd launch.Command) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	return f.code, f.err
}

func (f *fakeStrategy) last(t *testing.T) launch.Command {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls, "gradle was not launched")
	return f.calls[len(f.calls)-1]
}

type env struct {
	home   string
	root   string
	server *testutil.DistributionServer
}

func newEnv(t *testing.T) env {
	t.Helper()
	ds := testutil.NewDistributionServer(t, "7.4", "/distributions/gradle-7.4-bin.zip",
		testutil.ZipArchive(t, testutil.DistributionFiles("7.4")))
	home := filepath.Join(t.TempDir(), ".gradle")
	return env{home: home, root: filepath.Join(home, config.CacheDirName), server: ds}
}

func (e env) system(extra map[string]string) *testSystem {
	vars := map[string]string{
		config.EnvGradleUserHome: e.home,
		config.EnvVersionURL:     e.server.MetadataURL(),
	}
	for k, v := range extra {
		vars[k] = v
	}
	return newTestSystem(vars)
}

func runWith(sys System, strategy launch.Strategy, args ...string) (int, error) {
	return Run(context.Background(), Options{Args: args, System: sys, Version: "test", Strategy: strategy})
}

func TestRunOnlineThenOffline(t *testing.T) {
	e := newEnv(t)
	strategy := &fakeStrategy{code: 5}
	sys := e.system(nil)

	code, err := runWith(sys, strategy, "build", "--info")

	require.NoError(t, err)
	assert.Equal(t, 5, code)
	installDir := filepath.Join(e.root, "gradle-7.4")
	assert.DirExists(t, installDir)
	assert.NoFileExists(t, filepath.Join(e.root, cache.MarkerFileName))
	pin, err := os.ReadFile(filepath.Join(e.root, cache.PinFileName))
	require.NoError(t, err)
	assert.Equal(t, "7.4", string(pin))
	assert.Contains(t, sys.StdoutString(), "Updating to Gradle 7.4\n")
	assert.Contains(t, sys.StdoutString(), "Update completed.\n")

	online := strategy.last(t)
	assert.Equal(t, []string{"build", "--info"}, online.Args[len(online.Args)-2:])

	code, err = runWith(e.system(nil), strategy, "--offline", "build")

	require.NoError(t, err)
	assert.Equal(t, 5, code)
	offline := strategy.last(t)
	assert.Equal(t, online.Path, offline.Path)
	assert.Equal(t, []string{"--offline", "build"}, offline.Args[len(offline.Args)-2:])
	assert.Equal(t, 1, e.server.MetadataHits())
	assert.Equal(t, 1, e.server.ArchiveHits())
}

func TestRunSkipsInstallWhenCached(t *testing.T) {
	e := newEnv(t)
	strategy := &fakeStrategy{}

	_, err := runWith(e.system(nil), strategy)
	require.NoError(t, err)
	sys := e.system(nil)
	_, err = runWith(sys, strategy)
	require.NoError(t, err)

	assert.Equal(t, 2, e.server.MetadataHits())
	assert.Equal(t, 1, e.server.ArchiveHits())
	assert.NotContains(t, sys.StdoutString(), "Updating to Gradle")
}

func TestRunRecoversFromInterruptedInstall(t *testing.T) {
	e := newEnv(t)
	installDir := filepath.Join(e.root, "gradle-7.4")
	require.NoError(t, os.MkdirAll(filepath.Join(installDir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.root, cache.PinFileName), []byte("7.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(e.root, cache.MarkerFileName), nil, 0o644))

	_, err := runWith(e.system(nil), &fakeStrategy{})

	require.NoError(t, err)
	assert.Equal(t, 1, e.server.ArchiveHits())
	assert.FileExists(t, filepath.Join(installDir, "bin", "gradle"))
	assert.NoFileExists(t, filepath.Join(e.root, cache.MarkerFileName))
}

func TestRunOfflineMarkerBlocksLaunch(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(e.root, "gradle-7.4"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.root, cache.PinFileName), []byte("7.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(e.root, cache.MarkerFileName), nil, 0o644))
	strategy := &fakeStrategy{}

	code, err := runWith(e.system(nil), strategy, "--offline")

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.Empty(t, strategy.calls)
}

func TestRunOfflineWithoutPin(t *testing.T) {
	e := newEnv(t)
	strategy := &fakeStrategy{}

	code, err := runWith(e.system(nil), strategy, "--offline", "build")

	assert.Equal(t, ExitFailure, code)
	require.ErrorIs(t, err, cache.ErrNotCached)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.Contains(t, err.Error(), "You must run Gradle once in online mode to download the files.\nPlease remove --offline from your script arguments.")
	assert.Contains(t, err.Error(), "read pinned version")
	assert.NotContains(t, err.Error(), "%!")
	assert.Zero(t, e.server.MetadataHits())
	assert.Zero(t, e.server.ArchiveHits())
	assert.Empty(t, strategy.calls)
}

func TestRunGradleUserHomeFlag(t *testing.T) {
	e := newEnv(t)
	other := filepath.Join(t.TempDir(), "custom-home")
	strategy := &fakeStrategy{}

	_, err := runWith(e.system(nil), strategy, "-g", other, "tasks")

	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(other, config.CacheDirName, "gradle-7.4"))
	assert.NoDirExists(t, e.root)
	assert.Equal(t, []string{"-g", other, "tasks"}, strategy.last(t).Args[len(strategy.last(t).Args)-3:])
}

func TestRunInvalidGradleHome(t *testing.T) {
	e := newEnv(t)

	code, err := runWith(e.system(nil), &fakeStrategy{}, "build", "-g")

	assert.Equal(t, ExitFailure, code)
	require.ErrorIs(t, err, config.ErrInvalidGradleHome)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.Zero(t, e.server.MetadataHits())
}

func TestRunInvalidSettings(t *testing.T) {
	e := newEnv(t)

	_, err := runWith(e.system(map[string]string{config.EnvLockTimeout: "soon"}), &fakeStrategy{})

	assert.Equal(t, KindConfig, KindOf(err))
}

func TestRunMetadataFailure(t *testing.T) {
	e := newEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	code, err := runWith(e.system(map[string]string{config.EnvVersionURL: server.URL}), &fakeStrategy{})

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Contains(t, err.Error(), "Unable to update Gradle installation")
	assert.NoFileExists(t, filepath.Join(e.root, cache.PinFileName))
}

func TestRunDownloadFailure(t *testing.T) {
	e := newEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/versions/current" {
			_, _ = w.Write([]byte(`{"version":"7.4","downloadUrl":"http://` + r.Host + `/missing.zip"}`))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	_, err := runWith(e.system(map[string]string{config.EnvVersionURL: server.URL + "/versions/current"}), &fakeStrategy{})

	assert.Equal(t, KindNetwork, KindOf(err))
	assert.NoFileExists(t, filepath.Join(e.root, cache.MarkerFileName))
}

func TestRunExtractFailureLeavesMarker(t *testing.T) {
	ds := testutil.NewDistributionServer(t, "7.4", "/gradle-7.4-bin.zip", []byte("garbage"))
	home := t.TempDir()
	sys := newTestSystem(map[string]string{
		config.EnvGradleUserHome: home,
		config.EnvVersionURL:     ds.MetadataURL(),
	})
	strategy := &fakeStrategy{}

	_, err := runWith(sys, strategy)

	assert.Equal(t, KindExtract, KindOf(err))
	assert.FileExists(t, filepath.Join(home, config.CacheDirName, cache.MarkerFileName))
	assert.Empty(t, strategy.calls)
}

func TestRunMissingEntryPoint(t *testing.T) {
	ds := testutil.NewDistributionServer(t, "7.4", "/gradle-7.4-bin.zip",
		testutil.ZipArchive(t, map[string]string{"gradle-7.4/lib/core.jar": "jar"}))
	sys := newTestSystem(map[string]string{
		config.EnvGradleUserHome: t.TempDir(),
		config.EnvVersionURL:     ds.MetadataURL(),
	})

	code, err := Run(context.Background(), Options{System: sys})

	assert.Equal(t, ExitFailure, code)
	require.ErrorIs(t, err, launch.ErrEntryPointMissing)
	assert.Equal(t, KindLaunch, KindOf(err))
}

func TestRunLaunchInterrupted(t *testing.T) {
	e := newEnv(t)
	strategy := &fakeStrategy{code: -1, err: launch.ErrInterrupted}

	code, err := runWith(e.system(nil), strategy)

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, KindInterrupted, KindOf(err))
}

func TestRunInterruptedBeforeLaunch(t *testing.T) {
	orig := notifyContext
	notifyContext = func(parent context.Context, _ ...os.Signal) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(parent)
		cancel()
		return ctx, cancel
	}
	t.Cleanup(func() { notifyContext = orig })
	e := newEnv(t)
	strategy := &fakeStrategy{}

	code, err := runWith(e.system(nil), strategy)

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, KindInterrupted, KindOf(err))
	assert.Empty(t, strategy.calls)
	assert.Zero(t, e.server.ArchiveHits())
}

func TestRunInterruptedAfterPrepare(t *testing.T) {
	e := newEnv(t)
	strategy := &fakeStrategy{}
	_, err := runWith(e.system(nil), strategy)
	require.NoError(t, err)
	require.Len(t, strategy.calls, 1)

	orig := notifyContext
	notifyContext = func(parent context.Context, _ ...os.Signal) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(parent)
		cancel()
		return ctx, cancel
	}
	t.Cleanup(func() { notifyContext = orig })

	code, err := runWith(e.system(nil), strategy, "--offline")

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, KindInterrupted, KindOf(err))
	assert.Len(t, strategy.calls, 1)
}

func TestRunLockTimeout(t *testing.T) {
	e := newEnv(t)
	held, err := cache.New(cache.NewLayout(e.root), cache.Options{}).Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Release() })
	sys := e.system(map[string]string{config.EnvLockTimeout: "300ms"})

	_, err = runWith(sys, &fakeStrategy{})

	require.ErrorIs(t, err, cache.ErrLockTimeout)
	assert.Equal(t, KindIO, KindOf(err))
	assert.Contains(t, sys.StdoutString(), "Waiting for another grab process")
}

func TestRunConcurrentInstallsOnce(t *testing.T) {
	e := newEnv(t)
	strategy := &fakeStrategy{}
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = runWith(e.system(nil), strategy)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.server.ArchiveHits())
	assert.Len(t, strategy.calls, 3)
	pin, err := os.ReadFile(filepath.Join(e.root, cache.PinFileName))
	require.NoError(t, err)
	assert.Equal(t, "7.4", string(pin))
}

func TestRunWorkingDirError(t *testing.T) {
	e := newEnv(t)
	sys := e.system(nil)
	sys.GetwdFunc = func() (string, error) { return "", errors.New("gone") }

	_, err := runWith(sys, &fakeStrategy{})

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Zero(t, e.server.MetadataHits())
}

func TestRunRequiresSystem(t *testing.T) {
	code, err := Run(context.Background(), Options{})
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestRunUsesWorkingDirAndEnvironment(t *testing.T) {
	e := newEnv(t)
	work := t.TempDir()
	sys := e.system(map[string]string{"JAVA_OPTS": "-Xmx1g"})
	sys.GetwdFunc = func() (string, error) { return work, nil }
	strategy := &fakeStrategy{}

	_, err := runWith(sys, strategy)

	require.NoError(t, err)
	got := strategy.last(t)
	assert.Equal(t, work, got.Dir)
	assert.Contains(t, got.Env, "JAVA_OPTS=-Xmx1g")
}

func TestRunHTTPTimeoutApplied(t *testing.T) {
	e := newEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	_, err := runWith(e.system(map[string]string{
		config.EnvVersionURL:  server.URL,
		config.EnvHTTPTimeout: "100ms",
	}), &fakeStrategy{})

	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestRunSlowDownloadOutlastsHTTPTimeout(t *testing.T) {
	e := newEnv(t)
	e.server.Throttle(15, 100*time.Millisecond)
	strategy := &fakeStrategy{}

	code, err := runWith(e.system(map[string]string{config.EnvHTTPTimeout: "500ms"}), strategy)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.DirExists(t, filepath.Join(e.root, "gradle-7.4"))
	pin, err := os.ReadFile(filepath.Join(e.root, cache.PinFileName))
	require.NoError(t, err)
	assert.Equal(t, "7.4", string(pin))
	assert.Equal(t, 1, e.server.ArchiveHits())
}

func TestRunDownloadHeaderTimeout(t *testing.T) {
	e := newEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/versions/current" {
			_, _ = w.Write([]byte(`{"version": "7.4", "downloadUrl": "http://` + r.Host + `/gradle-7.4-bin.zip"}`))
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	_, err := runWith(e.system(map[string]string{
		config.EnvVersionURL:  server.URL + "/versions/current",
		config.EnvHTTPTimeout: "100ms",
	}), &fakeStrategy{})

	assert.Equal(t, KindNetwork, KindOf(err))
}

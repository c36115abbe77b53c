package grab

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"sync"
)

// testSystem provides a mock System for unit tests.
//
// Environment lookups only see Env so the developer's own GRAB_* and
// GRADLE_USER_HOME variables never leak into a test. Getwd falls back to
// RealSystem.
type testSystem struct {
	RealSystem

	Env       map[string]string
	GetwdFunc func() (string, error)

	mu     sync.Mutex
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newTestSystem(env map[string]string) *testSystem {
	return &testSystem{Env: env}
}

func (s *testSystem) Getwd() (string, error) {
	if s.GetwdFunc != nil {
		return s.GetwdFunc()
	}
	return s.RealSystem.Getwd()
}

func (s *testSystem) Getenv(key string) string {
	return s.Env[key]
}

func (s *testSystem) Environ() []string {
	env := make([]string, 0, len(s.Env))
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

func (s *testSystem) Stdin() io.Reader {
	return strings.NewReader("")
}

func (s *testSystem) Stdout() io.Writer {
	return lockedWriter{mu: &s.mu, w: &s.stdout}
}

func (s *testSystem) Stderr() io.Writer {
	return lockedWriter{mu: &s.mu, w: &s.stderr}
}

func (s *testSystem) StdoutString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdout.String()
}

func (s *testSystem) StderrString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stderr.String()
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

package ldd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpldd/xpldd/internal/config"
	"github.com/xpldd/xpldd/internal/testutil"
)

func Test_ProcessResolvesAndRecurses(t *testing.T) {
	libDir := t.TempDir()
	binDir := t.TempDir()

	// b exists in the global search path, c exists nowhere.
	libB := testutil.SharedObject{}.WriteFile(t, filepath.Join(libDir, "libb.so"))
	app := testutil.SharedObject{
		Needed: []string{"libb.so", "libc.so"},
		RPaths: []string{"/opt/lib"},
	}.WriteFile(t, filepath.Join(binDir, "app"))

	walker := NewWalker(&config.Session{SearchPaths: []string{libDir}})
	ok := walker.Process(app)
	assert.True(t, ok)

	root := walker.Registry[app]
	require.NotNil(t, root)
	assert.Equal(t, []string{libB, "libc.so"}, root.Deps)
	assert.Equal(t, []string{"/opt/lib"}, root.RunPaths)
	assert.True(t, root.Resolved)

	// b was recursed into, the unresolved c was not.
	require.Contains(t, walker.Registry, libB)
	assert.True(t, walker.Registry[libB].Resolved)
	assert.NotContains(t, walker.Registry, "libc.so")
}

func Test_ProcessOwnRunPathsAfterSessionPaths(t *testing.T) {
	sessionDir := t.TempDir()
	rpathDir := t.TempDir()
	fromSession := testutil.SharedObject{}.WriteFile(t, filepath.Join(sessionDir, "libx.so"))
	testutil.SharedObject{}.WriteFile(t, filepath.Join(rpathDir, "libx.so"))

	app := testutil.SharedObject{
		Needed: []string{"libx.so"},
		RPaths: []string{rpathDir},
	}.WriteFile(t, filepath.Join(t.TempDir(), "app"))

	// Session search paths win over the binary's own rpath entries.
	walker := NewWalker(&config.Session{SearchPaths: []string{sessionDir}})
	require.True(t, walker.Process(app))
	assert.Equal(t, []string{fromSession}, walker.Registry[app].Deps)

	// Without session paths the rpath entry is used.
	walker = NewWalker(&config.Session{})
	require.True(t, walker.Process(app))
	assert.Equal(t, []string{filepath.Join(rpathDir, "libx.so")}, walker.Registry[app].Deps)
}

func Test_ProcessCycleTerminates(t *testing.T) {
	dir := t.TempDir()

	// a and b need each other
	libA := testutil.SharedObject{Needed: []string{"libb.so"}}.
		WriteFile(t, filepath.Join(dir, "liba.so"))
	libB := testutil.SharedObject{Needed: []string{"liba.so"}}.
		WriteFile(t, filepath.Join(dir, "libb.so"))

	walker := NewWalker(&config.Session{SearchPaths: []string{dir}})
	ok := walker.Process(libA)
	assert.True(t, ok)

	// Each binary appears exactly once in the registry.
	assert.Len(t, walker.Registry, 2)
	assert.Equal(t, []string{libB}, walker.Registry[libA].Deps)
	assert.Equal(t, []string{libA}, walker.Registry[libB].Deps)
}

func Test_ProcessSelfDependency(t *testing.T) {
	dir := t.TempDir()
	libA := testutil.SharedObject{Needed: []string{"liba.so"}}.
		WriteFile(t, filepath.Join(dir, "liba.so"))

	walker := NewWalker(&config.Session{SearchPaths: []string{dir}})
	require.True(t, walker.Process(libA))
	assert.Len(t, walker.Registry, 1)
	assert.Equal(t, []string{libA}, walker.Registry[libA].Deps)
}

func Test_ProcessNoRecurseInsertsPlaceholders(t *testing.T) {
	libDir := t.TempDir()
	libB := testutil.SharedObject{Needed: []string{"libd.so"}}.
		WriteFile(t, filepath.Join(libDir, "libb.so"))
	app := testutil.SharedObject{Needed: []string{"libb.so", "libc.so"}}.
		WriteFile(t, filepath.Join(t.TempDir(), "app"))

	walker := NewWalker(&config.Session{
		SearchPaths: []string{libDir},
		NoRecurse:   true,
	})
	require.True(t, walker.Process(app))

	assert.Equal(t, []string{libB, "libc.so"}, walker.Registry[app].Deps)

	// Both dependencies get placeholder entries, even the unresolved
	// one, but neither was inspected: b's own dependency on d is not
	// discovered.
	require.Contains(t, walker.Registry, libB)
	assert.False(t, walker.Registry[libB].Resolved)
	assert.Empty(t, walker.Registry[libB].Deps)
	require.Contains(t, walker.Registry, "libc.so")
	assert.False(t, walker.Registry["libc.so"].Resolved)
	assert.NotContains(t, walker.Registry, "libd.so")
}

func Test_ProcessOpenFailure(t *testing.T) {
	walker := NewWalker(&config.Session{})
	ok := walker.Process(filepath.Join(t.TempDir(), "nonexistent"))
	assert.False(t, ok)
	assert.Empty(t, walker.Registry)
}

func Test_ProcessNotAnELF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\ntrue\n"), 0o755))

	walker := NewWalker(&config.Session{})
	ok := walker.Process(path)
	assert.False(t, ok)
	assert.Empty(t, walker.Registry)
}

func Test_ProcessDegradedExtraction(t *testing.T) {
	libDir := t.TempDir()
	libGood := testutil.SharedObject{}.WriteFile(t, filepath.Join(libDir, "libgood.so"))
	app := testutil.SharedObject{
		Needed:      []string{"libgood.so", "libbad.so"},
		CorruptFrom: 1,
	}.WriteFile(t, filepath.Join(t.TempDir(), "app"))

	walker := NewWalker(&config.Session{SearchPaths: []string{libDir}})
	ok := walker.Process(app)

	// The run failed, but the entries extracted before the corruption
	// were still resolved and recursed into.
	assert.False(t, ok)
	require.Contains(t, walker.Registry, app)
	assert.Equal(t, []string{libGood}, walker.Registry[app].Deps)
	assert.Contains(t, walker.Registry, libGood)
}

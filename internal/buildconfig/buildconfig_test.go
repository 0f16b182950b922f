package buildconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectToolPrefersMavenOverGradle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle"), []byte(""), 0644))

	assert.Equal(t, ToolMaven, DetectTool(dir))
}

func TestDetectToolGradle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte(""), 0644))

	assert.Equal(t, ToolGradle, DetectTool(dir))
}

func TestDetectToolBazel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "WORKSPACE"), []byte(""), 0644))

	assert.Equal(t, ToolBazel, DetectTool(dir))
}

func TestDetectToolNone(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, ToolNone, DetectTool(dir))
}

func TestFingerprintChangesWithBuildFileContent(t *testing.T) {
	dir := t.TempDir()
	pom := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(pom, []byte("<project>v1</project>"), 0644))

	fp1 := ComputeFingerprint(dir, nil, "", "maven", nil)

	require.NoError(t, os.WriteFile(pom, []byte("<project>v2</project>"), 0644))
	fp2 := ComputeFingerprint(dir, nil, "", "maven", nil)

	assert.NotEqual(t, fp1.String(), fp2.String())
}

func TestFingerprintStableForSameInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0644))

	fp1 := ComputeFingerprint(dir, []string{"b:1", "a:1"}, "", "maven", nil)
	fp2 := ComputeFingerprint(dir, []string{"a:1", "b:1"}, "", "maven", nil)

	assert.Equal(t, fp1.String(), fp2.String())
}

func TestParseMavenInfoLine(t *testing.T) {
	path, ok := parseMavenInfoLine("[INFO] com.foo:bar:jar:1.0:compile:/home/u/.m2/repo/bar-1.0.jar")
	require.True(t, ok)
	assert.Equal(t, "/home/u/.m2/repo/bar-1.0.jar", path)

	_, ok = parseMavenInfoLine("[INFO] Scanning for projects...")
	assert.False(t, ok)
}

func TestExtractAfterFlagStopsAtNextFlag(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "a.jar")
	require.NoError(t, os.WriteFile(jar, nil, 0644))

	got := extractAfterFlag(`arguments: "--classpath" "`+jar+`" "--other" "ignored"`, "--classpath")
	assert.Equal(t, []string{jar}, got)
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "dep.jar")
	require.NoError(t, os.WriteFile(jar, nil, 0644))

	c := newDiskCache(dir)
	fp := Fingerprint{hash: "abc123"}
	require.NoError(t, c.Store(fp, Result{ClassPath: []string{jar}}))

	got, ok := c.Load(fp)
	require.True(t, ok)
	assert.Equal(t, []string{jar}, got.ClassPath)
}

func TestDiskCacheMissOnFingerprintMismatch(t *testing.T) {
	dir := t.TempDir()
	c := newDiskCache(dir)
	require.NoError(t, c.Store(Fingerprint{hash: "one"}, Result{ClassPath: []string{"x.jar"}}))

	_, ok := c.Load(Fingerprint{hash: "two"})
	assert.False(t, ok)
}

func TestDiskCacheMissWhenCachedPathGone(t *testing.T) {
	dir := t.TempDir()
	c := newDiskCache(dir)
	fp := Fingerprint{hash: "xyz"}
	require.NoError(t, c.Store(fp, Result{ClassPath: []string{filepath.Join(dir, "missing.jar")}}))

	_, ok := c.Load(fp)
	assert.False(t, ok)
}

func TestEngineResolveExplicitBypassesDetection(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(t.TempDir())

	res, tool := e.Resolve(context.Background(), dir, Options{ExplicitClassPath: []string{"x.jar"}})
	assert.Equal(t, ToolExplicit, tool)
	assert.Equal(t, []string{"x.jar"}, res.ClassPath)
}

func TestEngineResolveNoneFallsBackToClasspathEnv(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(t.TempDir())

	t.Setenv("CLASSPATH", "/a.jar:/b.jar")
	res, tool := e.Resolve(context.Background(), dir, Options{})
	assert.Equal(t, ToolNone, tool)
	assert.Equal(t, []string{"/a.jar", "/b.jar"}, res.ClassPath)
}

func TestSplitPathList(t *testing.T) {
	assert.Equal(t, []string{"/a.jar", "/b.jar"}, splitPathList("/a.jar:/b.jar"))
	assert.Nil(t, splitPathList(""))
}

package classpath

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestJar(t *testing.T, path string, entries []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		zf, err := w.Create(e)
		require.NoError(t, err)
		_, err = zf.Write([]byte("stub"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestClassNameOfSkipsNestedAndModuleInfo(t *testing.T) {
	assert.Equal(t, "java.util.List", ClassNameOf("classes/java/util/List.class"))
	assert.Equal(t, "", ClassNameOf("classes/java/util/List$Entry.class"))
	assert.Equal(t, "", ClassNameOf("classes/module-info.class"))
	assert.Equal(t, "", ClassNameOf("META-INF/MANIFEST.MF"))
}

func TestScanJarFindsTopLevelClasses(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	writeTestJar(t, jar, []string{
		"com/acme/Widget.class",
		"com/acme/Widget$Builder.class",
		"META-INF/MANIFEST.MF",
	})

	names, err := ScanJar(jar)
	require.NoError(t, err)
	assert.Contains(t, names, "com.acme.Widget")
	assert.NotContains(t, names, "com.acme.Widget.Builder")
}

func TestScanClassPathUnionsAcrossJars(t *testing.T) {
	dir := t.TempDir()
	jar1 := filepath.Join(dir, "a.jar")
	jar2 := filepath.Join(dir, "b.jar")
	writeTestJar(t, jar1, []string{"com/acme/A.class"})
	writeTestJar(t, jar2, []string{"com/acme/B.class"})

	names := ScanClassPath([]string{jar1, jar2})
	assert.ElementsMatch(t, []string{"com.acme.A", "com.acme.B"}, names)
}

func TestSetMatchingSimpleNameAndPrefix(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	writeTestJar(t, jar, []string{"com/acme/Widget.class", "com/acme/util/Widget.class"})

	s := NewSet(t.TempDir(), "", []string{jar})
	assert.ElementsMatch(t, []string{"com.acme.Widget", "com.acme.util.Widget"}, s.MatchingSimpleName("Widget"))
	assert.ElementsMatch(t, []string{"com.acme.Widget"}, s.WithPrefix("com.acme.W"))
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classpath-abc.json")
	require.NoError(t, writeCache(path, "abc", []string{"com.acme.A"}))

	got, ok := readCache(path, "abc")
	require.True(t, ok)
	assert.Equal(t, []string{"com.acme.A"}, got)

	_, ok = readCache(path, "different")
	assert.False(t, ok)
}

package robot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := &Error{
		Command:  []string{"java", "-jar", "robot.jar", "convert", "-i", "x.owl"},
		ExitCode: 1,
		Stderr:   "ERROR unknown format",
	}
	msg := err.Error()
	assert.Contains(t, msg, "java -jar robot.jar convert -i x.owl")
	assert.Contains(t, msg, "exit status 1")
	assert.Contains(t, msg, "ERROR unknown format")
	assert.Contains(t, msg, "<no stdout>")
}

func TestError_TruncatesLongOutput(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "some repeated diagnostic output "
	}
	err := &Error{
		Command:  []string{"java", "-jar", "robot.jar", "--help"},
		ExitCode: 2,
		Stdout:   long,
		Stderr:   long,
	}
	msg := err.Error()
	assert.Contains(t, msg, "[...]")
	assert.Less(t, len(msg), 2*len(long))
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(nil)
	assert.Equal(t, DefaultVersion, r.Version())
	assert.Contains(t, r.JarURL(), "v"+DefaultVersion)

	p, err := r.JarPath()
	assert.NoError(t, err)
	assert.Contains(t, p, DefaultVersion)
	assert.Contains(t, p, "robot.jar")
}

func TestJarPath_CustomCacheDir(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(&Opts{Version: "1.9.5", CacheDir: dir})
	p, err := r.JarPath()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1.9.5", "robot.jar"), p)
}

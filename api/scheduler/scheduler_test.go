package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPurgeArtifactsRemovesOnlyAgedPDFs(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "criar-laudo_abc_1.pdf")
	fresh := filepath.Join(dir, "criar-laudo_abc_2.pdf")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		assert.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	aged := time.Now().Add(-31 * 24 * time.Hour)
	assert.NoError(t, os.Chtimes(old, aged, aged))
	assert.NoError(t, os.Chtimes(other, aged, aged))

	s := NewScheduler(dir)
	s.purgeArtifacts()

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	// non-pdf files are left alone
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(t.TempDir())
	s.Start()
	s.Stop()
}

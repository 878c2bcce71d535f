package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
	assert.True(t, conf.Headless)
	assert.Equal(t, 4, conf.ExportSlots)
	assert.Equal(t, "artifacts", conf.ArtifactDir)
}

func TestNewOverrides(t *testing.T) {
	os.Setenv("BROWSER_HEADLESS", "false")
	os.Setenv("EXPORT_SLOTS", "2")
	os.Setenv("ARTIFACT_DIR", "/tmp/laudos")
	defer func() {
		os.Unsetenv("BROWSER_HEADLESS")
		os.Unsetenv("EXPORT_SLOTS")
		os.Unsetenv("ARTIFACT_DIR")
	}()
	conf := New()

	assert.False(t, conf.Headless)
	assert.Equal(t, 2, conf.ExportSlots)
	assert.Equal(t, "/tmp/laudos", conf.ArtifactDir)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "error it borked")
	assert.Contains(t, rr.Body.String(), "bad request")
}

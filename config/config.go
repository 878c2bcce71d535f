package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/odontolegal/odontolegal-api/logging"
	"github.com/odontolegal/odontolegal-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseUrl      string
	Port         string
	ArtifactDir  string
	OpenAIKey    string
	BrowserPath  string
	Headless     bool
	ExportSlots  int
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := logging.New()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	headless := true
	if v := os.Getenv("BROWSER_HEADLESS"); v != "" {
		headless, _ = strconv.ParseBool(v)
	}
	slots := 4
	if v := os.Getenv("EXPORT_SLOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			slots = n
		}
	}
	artifactDir := os.Getenv("ARTIFACT_DIR")
	if artifactDir == "" {
		artifactDir = "artifacts"
	}

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseUrl:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),
		ArtifactDir:  artifactDir,
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		BrowserPath:  os.Getenv("BROWSER_PATH"),
		Headless:     headless,
		ExportSlots:  slots,
	}

}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errMsg}})
	w.Write(b)
}

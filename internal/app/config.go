package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/nutrition-lens/internal/ocr"
	"github.com/ironsheep/nutrition-lens/internal/tts"
)

// Environment variables read by ApplyEnv.
const (
	EnvOCREngine      = "NUTRITION_LENS_OCR_ENGINE"
	EnvTessdataPrefix = "NUTRITION_LENS_TESSDATA_PREFIX"
	EnvGoogleAPIKey   = "GOOGLE_API_KEY"
	EnvHistoryDB      = "NUTRITION_LENS_HISTORY_DB"
	EnvAllergensFile  = "NUTRITION_LENS_ALLERGENS_FILE"
	EnvHTTPAddr       = "NUTRITION_LENS_HTTP_ADDR"
	EnvAllowedOrigins = "ALLOWED_ORIGINS"
	EnvLogLevel       = "NUTRITION_LENS_LOG_LEVEL"
	EnvConfigFile     = "NUTRITION_LENS_CONFIG"
)

// HistoryDisabled as Config.HistoryDB turns scan history off.
const HistoryDisabled = "off"

// DefaultHTTPAddr is the listen address of the HTTP API.
const DefaultHTTPAddr = ":8080"

// DefaultTimeoutSeconds bounds each call to a Google API.
const DefaultTimeoutSeconds = 30

// OCRConfig selects and tunes the OCR engine.
type OCRConfig struct {
	// Engine is "tesseract", "vision" or "static". Empty picks vision when an API
	// key is configured and tesseract otherwise.
	Engine         string `json:"engine"`
	Language       string `json:"language,omitempty"`
	TessdataPrefix string `json:"tessdataPrefix,omitempty"`
	PageSegMode    int    `json:"pageSegMode,omitempty"`

	// Preprocess forces OCR preprocessing on or off. Unset means on for tesseract
	// and off for vision, which normalizes images itself.
	Preprocess *bool `json:"preprocess,omitempty"`

	// StaticText is returned by the static engine.
	StaticText string `json:"staticText,omitempty"`
}

// GoogleConfig holds the shared credentials and endpoints for Google Cloud APIs.
type GoogleConfig struct {
	APIKey         string `json:"apiKey,omitempty"`
	VisionEndpoint string `json:"visionEndpoint,omitempty"`
	TTSEndpoint    string `json:"ttsEndpoint,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// TTSConfig selects the narration voice. Speech is synthesized only when a Google
// API key is configured and Disabled is false.
type TTSConfig struct {
	Disabled      bool   `json:"disabled,omitempty"`
	LanguageCode  string `json:"languageCode,omitempty"`
	VoiceName     string `json:"voiceName,omitempty"`
	AudioEncoding string `json:"audioEncoding,omitempty"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr           string   `json:"addr,omitempty"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// Config is the complete runtime configuration.
type Config struct {
	OCR    OCRConfig    `json:"ocr"`
	Google GoogleConfig `json:"google"`
	TTS    TTSConfig    `json:"tts"`
	HTTP   HTTPConfig   `json:"http"`

	// AllergensFile is a JSON file of extra allergen terms, {"Name": ["term", ...]}.
	AllergensFile string `json:"allergensFile,omitempty"`

	// HistoryDB is the SQLite path for scan history, or "off".
	HistoryDB string `json:"historyDb,omitempty"`

	// LogLevel "debug" enables per-stage logging.
	LogLevel string `json:"logLevel,omitempty"`

	// HTTPClient is used for outbound Google API calls. Optional.
	HTTPClient *http.Client `json:"-"`
}

// LoadConfig reads path and applies defaults. An empty path or a missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		cfg.ApplyDefaults()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up with lookup
// (normally os.LookupEnv). Defaults are reapplied afterwards.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(EnvGoogleAPIKey, &c.Google.APIKey)
	set(EnvOCREngine, &c.OCR.Engine)
	set(EnvTessdataPrefix, &c.OCR.TessdataPrefix)
	set(EnvHistoryDB, &c.HistoryDB)
	set(EnvAllergensFile, &c.AllergensFile)
	set(EnvHTTPAddr, &c.HTTP.Addr)
	set(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvAllowedOrigins); ok && strings.TrimSpace(v) != "" {
		c.HTTP.AllowedOrigins = splitList(v)
	}
	c.ApplyDefaults()
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	if c.OCR.Language == "" {
		c.OCR.Language = ocr.DefaultLanguage
	}
	if c.Google.VisionEndpoint == "" {
		c.Google.VisionEndpoint = ocr.DefaultVisionEndpoint
	}
	if c.Google.TTSEndpoint == "" {
		c.Google.TTSEndpoint = tts.DefaultGoogleEndpoint
	}
	if c.Google.TimeoutSeconds <= 0 {
		c.Google.TimeoutSeconds = DefaultTimeoutSeconds
	}

	voice := tts.DefaultVoice()
	if c.TTS.LanguageCode == "" {
		c.TTS.LanguageCode = voice.LanguageCode
		if c.TTS.VoiceName == "" {
			c.TTS.VoiceName = voice.VoiceName
		}
	}
	if c.TTS.AudioEncoding == "" {
		c.TTS.AudioEncoding = string(voice.AudioEncoding)
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.HistoryDB == "" {
		c.HistoryDB = DefaultHistoryPath()
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// OCREngine resolves the engine name. An unset engine means vision when an API key
// is configured and tesseract otherwise.
func (c Config) OCREngine() string {
	if c.OCR.Engine != "" {
		return c.OCR.Engine
	}
	if c.Google.APIKey != "" {
		return ocr.EngineVision
	}
	return ocr.EngineTesseract
}

// PreprocessEnabled reports whether scans prepare images before OCR by default.
func (c Config) PreprocessEnabled() bool {
	if c.OCR.Preprocess != nil {
		return *c.OCR.Preprocess
	}
	return c.OCREngine() != ocr.EngineVision
}

// OCRPayloadLimit is the largest image the configured engine accepts, 0 for none.
func (c Config) OCRPayloadLimit() int {
	if c.OCREngine() == ocr.EngineVision {
		return ocr.VisionMaxImageBytes
	}
	return 0
}

// Validate reports configuration that NewWire cannot build.
func (c Config) Validate() error {
	switch engine := c.OCREngine(); engine {
	case ocr.EngineTesseract, ocr.EngineStatic:
	case ocr.EngineVision:
		if c.Google.APIKey == "" {
			return fmt.Errorf("ocr engine %q requires %s", ocr.EngineVision, EnvGoogleAPIKey)
		}
	default:
		return fmt.Errorf("unknown ocr engine %q (want %s, %s or %s)",
			engine, ocr.EngineTesseract, ocr.EngineVision, ocr.EngineStatic)
	}
	if _, err := tts.ParseAudioEncoding(c.TTS.AudioEncoding); err != nil {
		return err
	}
	return nil
}

// Voice returns the configured narration voice.
func (c Config) Voice() tts.Voice {
	enc, err := tts.ParseAudioEncoding(c.TTS.AudioEncoding)
	if err != nil {
		enc = tts.MP3
	}
	return tts.Voice{LanguageCode: c.TTS.LanguageCode, VoiceName: c.TTS.VoiceName, AudioEncoding: enc}
}

// SpeechEnabled reports whether narration audio will be synthesized.
func (c Config) SpeechEnabled() bool {
	return c.Google.APIKey != "" && !c.TTS.Disabled
}

// HistoryEnabled reports whether scans can be stored.
func (c Config) HistoryEnabled() bool {
	return c.HistoryDB != HistoryDisabled
}

// Debug reports whether debug logging is on.
func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}

// DefaultHistoryPath is ~/.nutrition-lens/history.db, or a relative path when the
// home directory is unknown.
func DefaultHistoryPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".nutrition-lens", "history.db")
	}
	return filepath.Join(dir, ".nutrition-lens", "history.db")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

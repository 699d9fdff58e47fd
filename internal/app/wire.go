package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ironsheep/nutrition-lens/internal/googleapi"
	"github.com/ironsheep/nutrition-lens/internal/history"
	"github.com/ironsheep/nutrition-lens/internal/imaging"
	"github.com/ironsheep/nutrition-lens/internal/nutrition"
	"github.com/ironsheep/nutrition-lens/internal/ocr"
	"github.com/ironsheep/nutrition-lens/internal/pipeline"
	"github.com/ironsheep/nutrition-lens/internal/tts"
)

// Wire bundles the collaborators built from a Config.
type Wire struct {
	Config      Config
	Logger      *log.Logger
	HTTP        *http.Client
	Recognizer  ocr.Recognizer
	Synthesizer tts.Synthesizer // nil when speech is disabled
	Detector    *nutrition.AllergenDetector
	Pipeline    *pipeline.Pipeline
	Images      *imaging.ImageCache

	historyMu sync.Mutex
	history   *history.Store // opened by RequireHistory
}

// NewLogger returns the process logger: stderr, since stdout carries MCP traffic
// and command output.
func NewLogger() *log.Logger {
	return log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

// NewWire validates cfg and constructs the dependency graph. logger may be nil.
func NewWire(ctx context.Context, cfg Config, logger *log.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.Google.TimeoutSeconds) * time.Second}
	}

	recognizer, err := newRecognizer(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	var synth tts.Synthesizer
	if cfg.SpeechEnabled() {
		synth = tts.NewGoogle(googleapi.New(cfg.Google.TTSEndpoint, cfg.Google.APIKey, httpClient))
	}

	detector, err := nutrition.LoadAllergenDetector(cfg.AllergensFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load allergens: %w", err)
	}

	if cfg.Debug() {
		logger.Printf("ocr engine %s, speech %v, history %q", cfg.OCREngine(), synth != nil, cfg.HistoryDB)
	}

	return &Wire{
		Config:      cfg,
		Logger:      logger,
		HTTP:        httpClient,
		Recognizer:  recognizer,
		Synthesizer: synth,
		Detector:    detector,
		Pipeline: pipeline.New(recognizer, pipeline.Options{
			Synthesizer:    synth,
			Voice:          cfg.Voice(),
			Detector:       detector,
			SkipPreprocess: !cfg.PreprocessEnabled(),
			MaxOCRBytes:    cfg.OCRPayloadLimit(),
			Logger:         logger,
			Debug:          cfg.Debug(),
		}),
		Images: imaging.NewImageCache(),
	}, nil
}

func newRecognizer(cfg Config, httpClient *http.Client) (ocr.Recognizer, error) {
	switch engine := cfg.OCREngine(); engine {
	case ocr.EngineTesseract:
		return ocr.NewTesseract(ocr.TesseractOptions{
			Language:       cfg.OCR.Language,
			TessdataPrefix: cfg.OCR.TessdataPrefix,
			PageSegMode:    cfg.OCR.PageSegMode,
		}), nil
	case ocr.EngineVision:
		return ocr.NewVision(googleapi.New(cfg.Google.VisionEndpoint, cfg.Google.APIKey, httpClient)), nil
	case ocr.EngineStatic:
		return ocr.Static{Text: cfg.OCR.StaticText}, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", engine)
	}
}

// ErrHistoryDisabled is returned by RequireHistory when no store is configured.
var ErrHistoryDisabled = errors.New("scan history is disabled")

// HistoryEnabled reports whether RequireHistory can return a store.
func (w *Wire) HistoryEnabled() bool {
	return w.Config.HistoryEnabled()
}

// RequireHistory returns the history store, opening the database on first use so
// commands that never save or list scans leave no file behind. It returns
// ErrHistoryDisabled when history is off.
func (w *Wire) RequireHistory(ctx context.Context) (*history.Store, error) {
	if !w.HistoryEnabled() {
		return nil, ErrHistoryDisabled
	}

	w.historyMu.Lock()
	defer w.historyMu.Unlock()
	if w.history != nil {
		return w.history, nil
	}

	path := w.Config.HistoryDB
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	w.history = store
	return store, nil
}

// Close releases the history database if it was opened.
func (w *Wire) Close() error {
	w.historyMu.Lock()
	defer w.historyMu.Unlock()
	if w.history == nil {
		return nil
	}
	err := w.history.Close()
	w.history = nil
	return err
}

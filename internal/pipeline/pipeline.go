package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/ironsheep/nutrition-lens/internal/googleapi"
	"github.com/ironsheep/nutrition-lens/internal/imaging"
	"github.com/ironsheep/nutrition-lens/internal/nutrition"
	"github.com/ironsheep/nutrition-lens/internal/ocr"
	"github.com/ironsheep/nutrition-lens/internal/tts"
)

// NoTextWarning is attached to results whose OCR step produced no text.
const NoTextWarning = "Could not extract text. Try another image."

// ErrInvalidRegion is wrapped when a requested crop region does not fit the image.
var ErrInvalidRegion = errors.New("invalid region")

// ScanResult is everything derived from one label image (or one text).
type ScanResult struct {
	RawText     string           `json:"raw_text"`
	Nutrition   *nutrition.Table `json:"nutrition"`
	Ingredients []string         `json:"ingredients"`
	Allergens   []string         `json:"allergens"`
	Rating      nutrition.Rating `json:"rating"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// Narration is the spoken summary of a nutrient table.
type Narration struct {
	Text    string `json:"text"`
	Audio   []byte `json:"-"`
	Warning string `json:"warning,omitempty"`
}

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	// Synthesizer produces narration audio. Nil disables audio.
	Synthesizer tts.Synthesizer

	// Voice is passed to the synthesizer. Zero means tts.DefaultVoice().
	Voice tts.Voice

	// Detector finds allergens. Nil means the built-in vocabulary.
	Detector *nutrition.AllergenDetector

	// Prepare controls OCR preprocessing. Nil means imaging.DefaultPrepareOptions().
	Prepare *imaging.PrepareOptions

	// SkipPreprocess sends images to OCR as uploaded unless a call asks for
	// WithPreprocess(true). Cloud engines do their own normalization.
	SkipPreprocess bool

	// MaxOCRBytes bounds the payload handed to the recognizer. A prepared image
	// above it is re-encoded as JPEG and, failing that, replaced by the original
	// upload. 0 means no bound.
	MaxOCRBytes int

	// Logger receives recovered failures. Nil means log.Default().
	Logger *log.Logger

	// Debug enables per-stage log lines.
	Debug bool
}

// Pipeline holds read-only collaborators and is safe for concurrent use.
type Pipeline struct {
	recognizer  ocr.Recognizer
	synthesizer tts.Synthesizer
	voice       tts.Voice
	detector    *nutrition.AllergenDetector
	prepare     imaging.PrepareOptions
	preprocess  bool
	maxOCRBytes int
	logger      *log.Logger
	debug       bool
}

// New returns a Pipeline that reads text with recognizer.
func New(recognizer ocr.Recognizer, opts Options) *Pipeline {
	p := &Pipeline{
		recognizer:  recognizer,
		synthesizer: opts.Synthesizer,
		voice:       opts.Voice,
		detector:    opts.Detector,
		prepare:     imaging.DefaultPrepareOptions(),
		preprocess:  !opts.SkipPreprocess,
		maxOCRBytes: opts.MaxOCRBytes,
		logger:      opts.Logger,
		debug:       opts.Debug,
	}
	if p.voice == (tts.Voice{}) {
		p.voice = tts.DefaultVoice()
	}
	if p.detector == nil {
		p.detector = nutrition.NewAllergenDetector(nil)
	}
	if opts.Prepare != nil {
		p.prepare = *opts.Prepare
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	return p
}

// HasSynthesizer reports whether Narrate can produce audio.
func (p *Pipeline) HasSynthesizer() bool {
	return p.synthesizer != nil
}

type scanConfig struct {
	region     *imaging.Region
	preprocess bool
}

// ScanOption adjusts a single Scan call.
type ScanOption func(*scanConfig)

// WithRegion restricts OCR to a rectangle of the decoded image.
func WithRegion(r imaging.Region) ScanOption {
	return func(c *scanConfig) { c.region = &r }
}

// WithPreprocess turns OCR preprocessing on or off for one call. The default comes
// from Options.SkipPreprocess.
func WithPreprocess(enabled bool) ScanOption {
	return func(c *scanConfig) { c.preprocess = enabled }
}

// Scan analyzes one label image. It returns a *imaging.DecodeError when data is not
// a decodable image and an error wrapping ErrInvalidRegion for a bad crop region.
// Every other failure is recovered and reported in ScanResult.Warnings.
func (p *Pipeline) Scan(ctx context.Context, data []byte, opts ...ScanOption) (*ScanResult, error) {
	cfg := scanConfig{preprocess: p.preprocess}
	for _, opt := range opts {
		opt(&cfg)
	}

	img, format, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	p.debugf("decoded %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())

	var warnings []string
	ocrInput := data
	if cfg.region != nil || cfg.preprocess {
		if cfg.region != nil {
			img, err = imaging.Crop(img, *cfg.region)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
			}
		}
		if cfg.preprocess {
			img = imaging.PrepareForOCR(img, p.prepare)
		}
		encoded, err := p.encodeForOCR(img)
		switch {
		case err == nil:
			ocrInput = encoded
		case cfg.region != nil && encoded != nil:
			// Sending the upload instead would drop the crop.
			p.logger.Printf("cropped image over the OCR payload limit: %v", err)
			warnings = append(warnings, err.Error())
			ocrInput = encoded
		default:
			p.logger.Printf("prepared image unusable, sending the original: %v", err)
			warnings = append(warnings, "preprocessing skipped: "+err.Error())
		}
	}
	p.debugf("sending %d bytes to OCR", len(ocrInput))

	text, err := p.recognizer.RecognizeText(ctx, ocrInput)
	if err != nil {
		p.logger.Printf("text recognition failed: %v", err)
		warnings = append(warnings, failureWarning("text recognition", err))
		text = ""
	}
	if strings.TrimSpace(text) == "" {
		warnings = append(warnings, NoTextWarning)
	}

	result := p.analyze(text)
	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}

// errPayloadTooLarge reports a prepared image above MaxOCRBytes in both encodings.
var errPayloadTooLarge = errors.New("prepared image exceeds the OCR payload limit")

// encodeForOCR encodes a prepared image as PNG, falling back to JPEG when the PNG
// is over the payload bound. When both are too large it returns the JPEG together
// with errPayloadTooLarge.
func (p *Pipeline) encodeForOCR(img image.Image) ([]byte, error) {
	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	if p.maxOCRBytes <= 0 || len(encoded) <= p.maxOCRBytes {
		return encoded, nil
	}
	jpeg, err := imaging.EncodeJPEG(img, jpegQuality)
	if err != nil {
		return nil, err
	}
	p.debugf("prepared PNG is %d bytes, JPEG %d bytes", len(encoded), len(jpeg))
	if len(jpeg) <= p.maxOCRBytes {
		return jpeg, nil
	}
	return jpeg, fmt.Errorf("%w (%d > %d bytes)", errPayloadTooLarge, len(jpeg), p.maxOCRBytes)
}

const jpegQuality = 90

// ScanText runs the analysis stages on text that was already recognized.
func (p *Pipeline) ScanText(text string) *ScanResult {
	return p.analyze(text)
}

func (p *Pipeline) analyze(text string) *ScanResult {
	cleaned := nutrition.CleanText(text)
	table := nutrition.ParseNutrition(cleaned)
	ingredients := nutrition.ParseIngredients(cleaned)
	allergens := p.detector.Detect(ingredients)
	rating := nutrition.RateHealth(table)

	p.debugf("parsed %d nutrients, %d ingredients, %d allergens; verdict %s",
		table.Len(), len(ingredients), len(allergens), rating.Verdict)

	return &ScanResult{
		RawText:     text,
		Nutrition:   table,
		Ingredients: ingredients,
		Allergens:   allergens,
		Rating:      rating,
	}
}

// Narrate composes the spoken summary of table and, when a synthesizer is wired,
// synthesizes it. A synthesis failure leaves Audio nil and sets Warning.
func (p *Pipeline) Narrate(ctx context.Context, table *nutrition.Table) Narration {
	n := Narration{Text: nutrition.ComposeNarration(table)}
	if p.synthesizer == nil {
		return n
	}

	audio, err := p.synthesizer.SynthesizeSpeech(ctx, n.Text, p.voice)
	if err != nil {
		p.logger.Printf("speech synthesis failed: %v", err)
		n.Warning = failureWarning("speech synthesis", err)
		return n
	}
	n.Audio = audio
	p.debugf("synthesized %d bytes of %s audio", len(audio), p.voice.AudioEncoding)
	return n
}

// failureWarning describes a failed step for a result warning. A key rejected by
// Google gets its own message since retrying with another image cannot help.
func failureWarning(step string, err error) string {
	if googleapi.IsUnauthorized(err) {
		return fmt.Sprintf("%s failed: the Google API key was rejected (%v)", step, err)
	}
	return step + " failed: " + err.Error()
}

func (p *Pipeline) debugf(format string, args ...any) {
	if p.debug {
		p.logger.Printf(format, args...)
	}
}

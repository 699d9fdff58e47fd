// Package ocr turns label image bytes into raw text.
//
// Every engine satisfies the Recognizer interface:
//
//	RecognizeText(ctx, image []byte) (string, error)
//
// # Engines
//
//   - Tesseract: local OCR through gosseract/v2. Requires cgo and an installed
//     Tesseract with language data; builds without cgo get a stub that always fails.
//   - Vision: Google Cloud Vision TEXT_DETECTION over REST, authenticated with an API key.
//   - Static: returns fixed text. Used when the text is already known and in tests.
//
// # Prerequisites
//
// Tesseract must be installed on the system for the local engine:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// A non-default tessdata directory can be supplied through TesseractOptions.TessdataPrefix.
//
// # Error Handling
//
// Engine failures are returned as *Error, which names the engine and wraps the cause.
// The label pipeline treats any *Error as recoverable: the scan continues with empty text.
// An image on which no text is found is not an error; the result is the empty string.
package ocr

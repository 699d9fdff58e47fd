// Package tts converts narration text into speech audio.
//
// The Synthesizer interface has a single implementation, Google, which calls the
// Google Cloud Text-to-Speech REST API. Failures are returned as *Error; callers in
// the label pipeline treat them as recoverable and fall back to text-only output.
package tts

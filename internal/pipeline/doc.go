// Package pipeline runs a label photo through OCR and the nutrition analysis stages.
//
// A Pipeline is built once with its collaborators (OCR recognizer, optional speech
// synthesizer, allergen detector, logger) and then shared. Each Scan is synchronous:
//
//	image bytes -> decode -> [crop] -> [preprocess] -> OCR -> raw text
//	raw text -> nutrient table, ingredient list -> allergens, health rating
//
// Only an undecodable image fails a scan. OCR failures are logged and produce an
// empty result carrying a warning, so a caller always has something to display.
package pipeline

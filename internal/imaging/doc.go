// Package imaging handles label images before they reach an OCR engine.
//
// It covers decoding of uploaded payloads, header inspection, cropping to a region of
// interest and the preprocessing that makes photographed nutrition panels easier to
// read. Decoding goes through disintegration/imaging so EXIF orientation is honored.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are stateless
// and never modify their input image.
//
// # Error Handling
//
// A payload that is empty or not a PNG, JPEG or GIF yields a *DecodeError. This is
// the one error that aborts a label scan, so callers test for it with errors.As.
// Other functions return plain wrapped errors for:
//   - Crop regions outside the image bounds or with x1 >= x2 / y1 >= y2
//   - File I/O errors when loading through the cache
//   - Encoding errors when producing PNG output
package imaging

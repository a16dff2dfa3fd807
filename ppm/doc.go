// Package ppm encodes and decodes the plain-text PPM image format (NetPbm
// "P3").
//
// A P3 stream is a sequence of whitespace separated decimal tokens: the
// magic constant, width, height, maxval and then width*height red, green,
// blue triples in row-major order. '#' starts a comment that runs to the
// end of the line and may appear between any two tokens.
//
//	P3
//	2 1
//	255
//	255 0 0 0 0 255
//
// Encoding and decoding are single forward passes with no shared state, so
// separate calls may run concurrently as long as each has its own reader or
// writer. Importing the package also registers "ppm" with image.Decode.
//
// See http://netpbm.sourceforge.net/doc/ppm.html.
package ppm

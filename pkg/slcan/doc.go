// Package slcan implements the SLCAN text encapsulation of CAN frames used
// over serial ports.
//
// A standard data frame is sent as one ASCII sentence:
//
//	t III L DD..DD \r
//
// (without the spaces) where III is the 11-bit identifier in 3 hex digits,
// L the data length 0-8 and DD one hex pair per payload byte, most
// significant nibble first. Hex digits are case-insensitive on input; the
// encoder emits lower case.
//
// A serial port may be opened in the middle of a sentence, so the decoder
// never fails: anything that doesn't fit the grammar is dropped and the
// decoder waits for the next start character.
package slcan

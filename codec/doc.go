// Package codec encodes values to and decodes them from exact byte layouts.
//
// Every codec call carries an Attrs value that selects integer byte order and
// the width of length prefixes. Aggregates copy and adjust it per field
// before recursing, so overrides stay local to the field they are set on.
//
// Ownership boundary:
// - Reader/Writer fixed-width primitives and under-run detection
// - scalar, string, sequence, array and box codecs
// - tagged unions: discriminants, sub-framing, default-variant capture
// - flags carriers gating optional fields
//
// Aggregate types implement Encoder on their value and Decoder on their
// pointer, calling the helpers here for each field in declaration order.
package codec

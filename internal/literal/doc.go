// Package literal converts between models.EventConfig and the config file
// the booth form loads, a script whose system of record is a declaration
//
//	const CONFIG = { ... };
//
// maintained both by hand and by the admin console.
//
// Decoding accepts the relaxed object-literal syntax people write by hand:
//
//   - line (//) and block (/* */) comments, recognised only outside strings
//   - single, double or backtick quoted strings with JSON-style escapes
//   - bare identifier keys as well as quoted keys
//   - trailing commas before } and ]
//   - null and undefined, both meaning "not set"
//
// Text before the declaration is tokenized only to find it, and text after
// the closing brace is never read. A missing declaration, an unclosed
// brace or bracket, or a value of the wrong type is a *DecodeError that
// carries the line and column of the fault.
//
// Encoding is canonicalizing: it emits fixed section comments and one
// layout, so Decode(Encode(x)) equals x while Encode(Decode(t)) generally
// differs from t in comments, quoting and spacing.
package literal

// Package source provides byte providers implementing binlayout.Source.
//
//	Bytes   - bounded in-memory buffer; writes mutate the caller's slice
//	Proxy   - redirects every access into another object's byte range
//	Memory  - wasm linear memory exported by a wazero module
//
// All providers are bounds-checked and never grow. Out-of-range access
// returns an errors.KindOutOfBounds error from the source phase.
package source

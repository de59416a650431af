// Package canon produces canonical JSON and content hashes.
//
// Voice keys and audio plan ids must be stable across runs and machines, so
// they are computed over RFC 8785 style canonical JSON: object keys sorted
// by UTF-16 code units, no insignificant whitespace, no HTML escaping, and
// NFC-normalized strings. Floats are rejected; callers that need fractional
// numbers in a hash (voice parameters) encode them as decimal strings first.
//
// Hashes are SHA-256 with domain separation: SHA256(domain + 0x00 + data).
package canon

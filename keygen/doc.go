// Package keygen derives cache keys from method invocations.
//
// A Generator walks the argument graph of a call (and, optionally, the
// method's signature) with one shared traversal and hands every leaf to an
// Encoder. Four encoders are provided:
//
//   - hash: a 64-bit running hash (HashKey). Fastest, but only 64 bits of
//     key space: collisions are possible and nothing disambiguates them.
//     Caches built on it must treat a hit as an optimization only.
//   - string: a human-readable rendering (StringKey).
//   - list: a structural echo of the arguments (List) with element-wise
//     Equal and Hash.
//   - digest: a cryptographic digest, base64url without padding (DigestKey).
//
// Cyclic graphs terminate when cycle checking is enabled. With it disabled a
// self-referential argument recurses without bound; that is the price of
// skipping the bookkeeping and is not repaired behind the caller's back.
//
// Structs whose type does not declare the operation an encoder relies on
// (Hash() uint64, or String() string for the string encoder) are walked
// field by field when reflection is enabled. Fields tagged `keygen:"-"` are
// skipped.
package keygen

// Package codec serializes entities to the text stored in the vaults table.
//
// Two codecs exist:
//   - JSON: the envelope {"attrs":{...},"id":"..."} with sorted keys
//   - Zstd: the same envelope, zstd-compressed and base64 encoded behind a
//     "zstd:" prefix; it also reads plain JSON rows
//
// Decode failures are reported as *DecodeError (errors.Is(err, ErrDecode));
// callers on the read path treat them as "entity absent".
package codec

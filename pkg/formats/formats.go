// Package formats reads scene documents and writes meshes.
//
// Input is either a plain JSON scene document or the binary container that
// wraps one (12-byte header, then length-prefixed JSON and BIN chunks, all
// little-endian). Output is STL, text or binary.
package formats

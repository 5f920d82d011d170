// Package vectorset loads dense float vector files into read-only,
// row-major collections.
//
// # File Format
//
//	[int32 count][int32 dimension][count*dimension elements]
//
// All fields are little-endian. Elements are float32 by default; files named
// *.u8bin and *.i8bin hold uint8 and int8 elements, which are widened to
// float32 on load. A trailing .zst, .gz or .lz4 suffix marks a compressed
// file, which is decompressed into memory before parsing.
//
// # Memory
//
// Uncompressed float32 files read from a store whose blobs are Mappable
// (blobstore.LocalStore) are not copied: the VectorSet aliases the mapping and
// keeps it open until Close. Every other path produces an owned slice. The
// result is identical either way.
//
// # Errors
//
// Malformed input yields a *FormatError carrying the path and the expected
// and actual sizes. Failures to read wrap ErrIO.
package vectorset

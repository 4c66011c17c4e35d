// Package volume defines bounded three-dimensional containers and the
// addressing rules every storage backend shares.
//
// A volume stores one value per integer position inside a BoundingBox.
// Backends (see the heap and stack subpackages) only implement raw,
// zero-based storage through the Volume interface; the generic functions in
// this package do everything else: they convert any integer index type,
// translate world positions into storage positions, enforce bounds and
// implement the composite Insert and InsertAnyways operations.
//
// # Coordinate spaces
//
// Positions are absolute ("world space") unless stated otherwise. A world
// position is translated to a storage position by subtracting the minimum
// corner of the volume's region, so a region can sit anywhere in int64
// space, including negative coordinates, while storage stays zero-based.
// Ref accepts an explicit Space for callers that already hold zero-based
// positions.
//
// # Absence
//
// Lookups never panic on bad input. An index that cannot be converted, or
// that falls outside the region, is simply absent: Get reports false,
// GetMut and Ref return nil, Set and Contains report false.
//
// # Ownership
//
// Volumes are not safe for concurrent use. A Subvolume borrows its backend;
// while the view is in use it should be the only accessor of that backend.
package volume

// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package database

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

const float64Size = 8

// encodeVector packs v as little-endian float64 values. A nil vector maps
// to SQL NULL.
func encodeVector(v vector.Vector) interface{} {
	if v == nil {
		return nil
	}
	buf := make([]byte, len(v)*float64Size)
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*float64Size:], math.Float64bits(x))
	}
	return buf
}

// decodeVector reverses encodeVector. A NULL column yields nil.
func decodeVector(b []byte) (vector.Vector, error) {
	if b == nil {
		return nil, nil
	}
	if len(b)%float64Size != 0 {
		return nil, fmt.Errorf("corrupt embedding blob: %d bytes is not a multiple of %d", len(b), float64Size)
	}
	v := make(vector.Vector, len(b)/float64Size)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*float64Size:]))
	}
	return v, nil
}

// Typed property decoders: every property payload is a sequence of
// big-endian cell groups, and these functions assemble those groups into
// host-native integers, strings, and tuples, per spec §4.4.
package fdt

import "github.com/BlueFalconHD/smoldtb/internal/endian"

// ReadString treats the payload as a concatenation of NUL-terminated
// strings and returns the one at position index (0-based). ok is false
// past the end of the list (including for a zero-length property, which
// decodes as no strings at all).
func (p *Property) ReadString(index int) (string, bool) {
	if p == nil {
		return "", false
	}
	payload := p.record().Value

	start := 0
	cur := 0
	for i := 0; i <= len(payload); i++ {
		if i == len(payload) {
			if start < i { // unterminated trailing string
				if cur == index {
					return string(payload[start:i]), true
				}
			}
			break
		}
		if payload[i] == 0 {
			if cur == index {
				return string(payload[start:i]), true
			}
			cur++
			start = i + 1
		}
	}
	return "", false
}

// ReadValues divides the payload into length/(cellsPerValue*4) values,
// each cellsPerValue big-endian cells wide, most-significant cell first.
// When out is nil, ReadValues returns the count without writing anything
// (and never mutates tree state, per spec §8); otherwise it fills out (up
// to len(out) values) and returns the count. A cellsPerValue of zero
// returns 0 immediately.
func (p *Property) ReadValues(cellsPerValue int, out []uint64) int {
	if p == nil || cellsPerValue <= 0 {
		return 0
	}
	payload := p.record().Value
	stride := cellsPerValue * endian.CellBytes
	count := len(payload) / stride
	if out == nil {
		return count
	}

	n := count
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = endian.ExtractCells(payload[i*stride:], cellsPerValue)
	}
	return count
}

// Pair is a two-component tuple decoded by ReadPairs.
type Pair struct{ A, B uint64 }

// PairLayout selects the cell width of each component of a Pair.
type PairLayout struct{ A, B int }

// ReadPairs generalizes ReadValues to a {A,B} tuple layout, each
// component's cell width independently selectable. Any zero width
// yields a count of 0.
func (p *Property) ReadPairs(layout PairLayout, out []Pair) int {
	if p == nil || layout.A == 0 || layout.B == 0 {
		return 0
	}
	payload := p.record().Value
	stride := (layout.A + layout.B) * endian.CellBytes
	count := len(payload) / stride
	if out == nil {
		return count
	}

	n := count
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		base := payload[i*stride:]
		out[i].A = endian.ExtractCells(base, layout.A)
		out[i].B = endian.ExtractCells(base[layout.A*endian.CellBytes:], layout.B)
	}
	return count
}

// Triplet is a three-component tuple decoded by ReadTriplets.
type Triplet struct{ A, B, C uint64 }

// TripletLayout selects the cell width of each component of a Triplet.
type TripletLayout struct{ A, B, C int }

// ReadTriplets generalizes ReadValues to a {A,B,C} tuple layout.
func (p *Property) ReadTriplets(layout TripletLayout, out []Triplet) int {
	if p == nil || layout.A == 0 || layout.B == 0 || layout.C == 0 {
		return 0
	}
	payload := p.record().Value
	stride := (layout.A + layout.B + layout.C) * endian.CellBytes
	count := len(payload) / stride
	if out == nil {
		return count
	}

	n := count
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		base := payload[i*stride:]
		out[i].A = endian.ExtractCells(base, layout.A)
		out[i].B = endian.ExtractCells(base[layout.A*endian.CellBytes:], layout.B)
		out[i].C = endian.ExtractCells(base[(layout.A+layout.B)*endian.CellBytes:], layout.C)
	}
	return count
}

// Quad is a four-component tuple decoded by ReadQuads.
type Quad struct{ A, B, C, D uint64 }

// QuadLayout selects the cell width of each component of a Quad.
type QuadLayout struct{ A, B, C, D int }

// ReadQuads generalizes ReadValues to a {A,B,C,D} tuple layout.
func (p *Property) ReadQuads(layout QuadLayout, out []Quad) int {
	if p == nil || layout.A == 0 || layout.B == 0 || layout.C == 0 || layout.D == 0 {
		return 0
	}
	payload := p.record().Value
	stride := (layout.A + layout.B + layout.C + layout.D) * endian.CellBytes
	count := len(payload) / stride
	if out == nil {
		return count
	}

	n := count
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		base := payload[i*stride:]
		off := 0
		out[i].A = endian.ExtractCells(base[off:], layout.A)
		off += layout.A * endian.CellBytes
		out[i].B = endian.ExtractCells(base[off:], layout.B)
		off += layout.B * endian.CellBytes
		out[i].C = endian.ExtractCells(base[off:], layout.C)
		off += layout.C * endian.CellBytes
		out[i].D = endian.ExtractCells(base[off:], layout.D)
	}
	return count
}

package fdt

import "github.com/BlueFalconHD/smoldtb/internal/serializer"

// FailedSize is returned by Finalize instead of a byte count when
// emission fails partway through a correctly-sized buffer; see
// serializer.Failed.
const FailedSize = serializer.Failed

// Finalize re-serializes t into buf, per spec §4.5. If buf is nil, too
// small, or not 4-byte aligned, it writes nothing and returns the
// required total size — callers size their buffer by calling
// t.Finalize(nil, bootCPUID) first, then t.Finalize(buf, bootCPUID) once
// buf is at least that large. On success it returns the number of bytes written.
func (t *Tree) Finalize(buf []byte, bootCPUID uint32) (uint, error) {
	return serializer.Serialize(t.arena, t.root, buf, bootCPUID)
}

// FinalizeSize reports the number of bytes Finalize would need to fully
// re-serialize t, without writing anything.
func (t *Tree) FinalizeSize() int {
	return serializer.Size(t.arena, t.root).TotalBytes()
}

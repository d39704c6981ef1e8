// Package overflow provides checked arithmetic for arena sizing, grounded
// on the teacher's internal/utils/overflow.go pattern of guarding
// multiplications before they're used to size an allocation.
package overflow

import (
	"fmt"
	"math"
)

// CheckMultiply reports an error if a*b would overflow a uint64.
func CheckMultiply(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil
	}
	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}
	return nil
}

// SafeMultiply multiplies a and b, returning an error instead of wrapping
// silently on overflow.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiply(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// SafeAdd adds a and b, returning an error on overflow.
func SafeAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("addition overflow: %d + %d exceeds uint64 max", a, b)
	}
	return sum, nil
}

// ArenaBytes computes the total byte size of the three arena sub-regions
// (nodes, properties, phandle index) given the pre-scan counts and each
// record's encoded size, checking every multiplication and the final sum
// for overflow. A blob with an implausible cell count could otherwise
// overflow this calculation on a 32-bit platform; on the 64-bit platforms
// this module targets it is effectively unreachable, but the check is
// cheap and matches the defensive style of the rest of the sizing path.
func ArenaBytes(nodeCount, propCount uint64, nodeSize, propSize, phandleSize uint64) (uint64, error) {
	nodeBytes, err := SafeMultiply(nodeCount, nodeSize)
	if err != nil {
		return 0, fmt.Errorf("node arena size: %w", err)
	}
	propBytes, err := SafeMultiply(propCount, propSize)
	if err != nil {
		return 0, fmt.Errorf("property arena size: %w", err)
	}
	phandleBytes, err := SafeMultiply(nodeCount, phandleSize)
	if err != nil {
		return 0, fmt.Errorf("phandle index size: %w", err)
	}

	total, err := SafeAdd(nodeBytes, propBytes)
	if err != nil {
		return 0, err
	}
	return SafeAdd(total, phandleBytes)
}

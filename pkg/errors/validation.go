package errors

import "math"

// MinModules is the smallest module count a slicing tree can be built over.
const MinModules = 2

// maxDimension keeps w*h and the summed frame sides inside int64 range for any
// realistic module count.
const maxDimension = math.MaxInt32

// ValidateModule validates the identifier and dimensions of a single module.
//
// The validation rules are:
//   - Identifier must be non-negative
//   - Width and height must be positive
//   - Width and height must fit in 32 bits
func ValidateModule(id, w, h int) error {
	if id < 0 {
		return New(ErrCodeInvalidModule, "module id must be non-negative, got %d", id)
	}
	if w <= 0 || h <= 0 {
		return New(ErrCodeInvalidModule, "module %d: dimensions must be positive, got %dx%d", id, w, h)
	}
	if w > maxDimension || h > maxDimension {
		return New(ErrCodeInvalidModule, "module %d: dimensions too large (max %d)", id, maxDimension)
	}
	return nil
}

// ValidateModuleCount validates that enough modules exist to form a slicing tree.
func ValidateModuleCount(n int) error {
	if n < MinModules {
		return New(ErrCodeInvalidConfig, "need at least %d modules, got %d", MinModules, n)
	}
	return nil
}

// ValidateUniqueIDs rejects duplicated module identifiers.
func ValidateUniqueIDs(ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return New(ErrCodeInvalidModule, "duplicate module id %d", id)
		}
		seen[id] = true
	}
	return nil
}

// Package tensor provides the core tensor types shared by all Axon engines.
package tensor

import "github.com/x448/float16"

// DType is the generic constraint for element types usable with Tensor[T, B].
//
// Float16 is intentionally absent: half precision is a storage format, not an
// arithmetic one. Engines materialize Float16 tensors via Cast.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType is the runtime type tag carried by every RawTensor.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Float16
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Float16:
		return 2
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns the canonical lowercase name for the data type.
// These names double as the "floatx" tags in the configuration file.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating point format.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64 || dt == Float16
}

// inferDataType maps a generic element type to its runtime tag.
func inferDataType[T DType](zero T) DataType {
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported element type")
	}
}

// Half is the 16-bit storage representation used by Float16 tensors.
type Half = float16.Float16

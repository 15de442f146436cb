package tensor

import (
	"math"
	"math/rand"

	"github.com/x448/float16"
)

// ScalarRaw builds a 0-D tensor holding v in the given dtype.
// Bool scalars are true when v != 0.
func ScalarRaw(v float64, dtype DataType, device Device) *RawTensor {
	r := MustNewRaw(Shape{}, dtype, device)
	switch dtype {
	case Float32:
		r.AsFloat32()[0] = float32(v)
	case Float64:
		r.AsFloat64()[0] = v
	case Float16:
		r.AsFloat16()[0] = float16.Fromfloat32(float32(v))
	case Int32:
		r.AsInt32()[0] = int32(v)
	case Int64:
		r.AsInt64()[0] = int64(v)
	case Uint8:
		r.AsUint8()[0] = uint8(v)
	case Bool:
		r.AsBool()[0] = v != 0
	default:
		panic("scalar: unsupported dtype")
	}
	return r
}

// one returns the multiplicative identity for T (true for bool).
func one[T DType]() T {
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = 1
	case *float64:
		*p = 1
	case *int32:
		*p = 1
	case *int64:
		*p = 1
	case *uint8:
		*p = 1
	case *bool:
		*p = true
	}
	return v
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var zero T
	raw, err := NewRaw(shape, inferDataType(zero), b.Device())
	if err != nil {
		panic(err)
	}
	// make() already zero-fills
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, one[T](), b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Eye creates an n-by-n identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	v := one[T]()
	for i := 0; i < n; i++ {
		t.Set(v, i, i)
	}
	return t
}

// Arange creates a 1-D tensor [start, start+1, ..., end-1].
// Not supported for bool.
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	n := arangeLen(start, end)
	if n <= 0 {
		panic("arange: end must be greater than start")
	}

	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = addIndex(start, i)
	}
	return t
}

func arangeLen[T DType](start, end T) int {
	switch s := any(start).(type) {
	case float32:
		return int(any(end).(float32) - s)
	case float64:
		return int(any(end).(float64) - s)
	case int32:
		return int(any(end).(int32) - s)
	case int64:
		return int(any(end).(int64) - s)
	case uint8:
		return int(any(end).(uint8)) - int(s)
	default:
		panic("arange: unsupported element type")
	}
}

func addIndex[T DType](start T, i int) T {
	switch s := any(start).(type) {
	case float32:
		return any(s + float32(i)).(T)
	case float64:
		return any(s + float64(i)).(T)
	case int32:
		return any(s + int32(i)).(T)
	case int64:
		return any(s + int64(i)).(T)
	case uint8:
		return any(s + uint8(i)).(T)
	default:
		panic("arange: unsupported element type")
	}
}

// Rand creates a float tensor with values drawn uniformly from [0, 1).
// math/rand is intentional: statistical quality and reproducibility matter
// here, cryptographic strength does not.
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = rand.Float32()
		}
	case []float64:
		for i := range data {
			data[i] = rand.Float64()
		}
	default:
		panic("Rand supports float32 and float64 only")
	}
	return t
}

// Randn creates a float tensor with values drawn from N(0, 1) using the
// Box-Muller transform.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := 0; i < len(data); i += 2 {
			z0, z1 := boxMuller()
			data[i] = float32(z0)
			if i+1 < len(data) {
				data[i+1] = float32(z1)
			}
		}
	case []float64:
		for i := 0; i < len(data); i += 2 {
			z0, z1 := boxMuller()
			data[i] = z0
			if i+1 < len(data) {
				data[i+1] = z1
			}
		}
	default:
		panic("Randn supports float32 and float64 only")
	}
	return t
}

func boxMuller() (float64, float64) {
	u1 := rand.Float64()
	u2 := rand.Float64()
	r := math.Sqrt(-2.0 * math.Log(1-u1))
	return r * math.Cos(2.0*math.Pi*u2), r * math.Sin(2.0*math.Pi*u2)
}

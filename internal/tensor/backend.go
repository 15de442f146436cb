package tensor

// Backend is the fixed operation vocabulary every compute engine implements.
//
// All methods take and return *RawTensor. Shape or dtype misuse is a
// programmer error and panics. Binary elementwise operations broadcast their
// operands under NumPy rules. Axis arguments accept negative values counted
// from the last axis.
type Backend interface {
	// Element-wise binary operations (broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor
	Pow(a, b *RawTensor) *RawTensor     // a^b, float only
	Maximum(a, b *RawTensor) *RawTensor // element-wise max
	Minimum(a, b *RawTensor) *RawTensor // element-wise min

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, s float64) *RawTensor
	SubScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor
	DivScalar(x *RawTensor, s float64) *RawTensor
	PowScalar(x *RawTensor, s float64) *RawTensor

	// Math operations (element-wise)
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Abs(x *RawTensor) *RawTensor
	Sign(x *RawTensor) *RawTensor                // -1, 0 or +1
	Round(x *RawTensor) *RawTensor               // round half away from zero
	Clip(x *RawTensor, lo, hi float64) *RawTensor

	// Activation functions
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor // softmax along dimension

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul performs batched matrix multiplication for 3D/4D tensors.
	// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
	// For 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Comparison operations (element-wise, broadcasting, return bool tensor)
	Greater(a, b *RawTensor) *RawTensor      // a > b
	GreaterEqual(a, b *RawTensor) *RawTensor // a >= b
	Lower(a, b *RawTensor) *RawTensor        // a < b
	LowerEqual(a, b *RawTensor) *RawTensor   // a <= b
	Equal(a, b *RawTensor) *RawTensor        // a == b
	NotEqual(a, b *RawTensor) *RawTensor     // a != b

	// Boolean operations (element-wise on bool tensors)
	And(a, b *RawTensor) *RawTensor
	Or(a, b *RawTensor) *RawTensor
	Not(x *RawTensor) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) *RawTensor                            // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // sum along dimension
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // mean along dimension
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // max along dimension
	MinDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // min along dimension
	ProdDim(x *RawTensor, dim int, keepDim bool) *RawTensor // product along dimension
	Argmax(x *RawTensor, dim int) *RawTensor                // Int64 indices of maxima
	Argmin(x *RawTensor, dim int) *RawTensor                // Int64 indices of minima

	// Shape operations
	Reshape(x *RawTensor, newShape Shape) *RawTensor
	Transpose(x *RawTensor, axes ...int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor // concatenate along dimension
	Squeeze(x *RawTensor, dim int) *RawTensor     // remove dimension of size 1
	Unsqueeze(x *RawTensor, dim int) *RawTensor   // add dimension of size 1
	Expand(x *RawTensor, shape Shape) *RawTensor  // broadcast to shape

	// Indexing operations
	Gather(x *RawTensor, dim int, index *RawTensor) *RawTensor // select along dim by index tensor
	Where(condition, x, y *RawTensor) *RawTensor               // conditional element selection
	OneHot(indices *RawTensor, depth int, dtype DataType) *RawTensor

	// Random sources; Seed makes subsequent draws reproducible.
	RandomUniform(shape Shape, dtype DataType) *RawTensor // U[0, 1)
	RandomNormal(shape Shape, dtype DataType) *RawTensor  // N(0, 1)
	Seed(seed int64)

	// Type conversion
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}

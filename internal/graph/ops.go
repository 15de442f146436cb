package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// broadcastStatic applies broadcasting rules to shapes that may contain -1.
// An unknown dimension broadcasts against anything; the result dimension is
// the known side unless it is 1, in which case it stays unknown.
func broadcastStatic(op string, a, b tensor.Shape) tensor.Shape {
	maxLen := max(len(a), len(b))
	out := make(tensor.Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aDim, bDim := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			aDim = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			bDim = b[idx]
		}

		o := maxLen - 1 - i
		switch {
		case aDim == bDim:
			out[o] = aDim
		case aDim == -1:
			if bDim == 1 {
				out[o] = -1
			} else {
				out[o] = bDim
			}
		case bDim == -1:
			if aDim == 1 {
				out[o] = -1
			} else {
				out[o] = aDim
			}
		case aDim == 1:
			out[o] = bDim
		case bDim == 1:
			out[o] = aDim
		default:
			panic(fmt.Sprintf("%s: cannot broadcast %v with %v", op, a, b))
		}
	}

	return out
}

// normalizeDim resolves a negative axis against a rank. Works on shapes with
// unknown dimensions, only the rank matters.
func normalizeDim(op string, rank, dim int) int {
	d := dim
	if d < 0 {
		d += rank
	}
	if d < 0 || d >= rank {
		panic(fmt.Sprintf("%s: axis %d out of range for rank %d", op, dim, rank))
	}
	return d
}

func (n *Node) binaryOp(kind opKind, other *Node) *Node {
	n.g.checkSame(n, other, kind.String())
	if n.dtype != other.dtype {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", kind, n.dtype, other.dtype))
	}
	return n.g.add(&Node{
		kind:   kind,
		inputs: []*Node{n, other},
		shape:  broadcastStatic(kind.String(), n.shape, other.shape),
		dtype:  n.dtype,
	})
}

// Add builds element-wise addition with broadcasting.
func (n *Node) Add(other *Node) *Node { return n.binaryOp(opAdd, other) }

// Sub builds element-wise subtraction with broadcasting.
func (n *Node) Sub(other *Node) *Node { return n.binaryOp(opSub, other) }

// Mul builds element-wise multiplication with broadcasting.
func (n *Node) Mul(other *Node) *Node { return n.binaryOp(opMul, other) }

// Div builds element-wise division with broadcasting.
func (n *Node) Div(other *Node) *Node { return n.binaryOp(opDiv, other) }

// Pow builds element-wise exponentiation with broadcasting.
func (n *Node) Pow(other *Node) *Node { return n.binaryOp(opPow, other) }

// Maximum builds the element-wise maximum.
func (n *Node) Maximum(other *Node) *Node { return n.binaryOp(opMaximum, other) }

// Minimum builds the element-wise minimum.
func (n *Node) Minimum(other *Node) *Node { return n.binaryOp(opMinimum, other) }

func (n *Node) scalarOp(kind opKind, s float64) *Node {
	return n.g.add(&Node{
		kind:   kind,
		inputs: []*Node{n},
		shape:  n.shape.Clone(),
		dtype:  n.dtype,
		attrs:  attrs{scalar: s},
	})
}

// AddScalar adds a constant to every element.
func (n *Node) AddScalar(s float64) *Node { return n.scalarOp(opAddScalar, s) }

// SubScalar subtracts a constant from every element.
func (n *Node) SubScalar(s float64) *Node { return n.scalarOp(opSubScalar, s) }

// MulScalar multiplies every element by a constant.
func (n *Node) MulScalar(s float64) *Node { return n.scalarOp(opMulScalar, s) }

// DivScalar divides every element by a constant.
func (n *Node) DivScalar(s float64) *Node { return n.scalarOp(opDivScalar, s) }

// PowScalar raises every element to a constant power.
func (n *Node) PowScalar(s float64) *Node { return n.scalarOp(opPowScalar, s) }

func (n *Node) unaryOp(kind opKind) *Node {
	return n.g.add(&Node{
		kind:   kind,
		inputs: []*Node{n},
		shape:  n.shape.Clone(),
		dtype:  n.dtype,
	})
}

// Neg negates every element.
func (n *Node) Neg() *Node { return n.unaryOp(opNeg) }

// Exp builds the element-wise exponential.
func (n *Node) Exp() *Node { return n.unaryOp(opExp) }

// Log builds the element-wise natural logarithm.
func (n *Node) Log() *Node { return n.unaryOp(opLog) }

// Sqrt builds the element-wise square root.
func (n *Node) Sqrt() *Node { return n.unaryOp(opSqrt) }

// Abs builds the element-wise absolute value.
func (n *Node) Abs() *Node { return n.unaryOp(opAbs) }

// Sign maps every element to -1, 0 or +1.
func (n *Node) Sign() *Node { return n.unaryOp(opSign) }

// Round rounds every element half away from zero.
func (n *Node) Round() *Node { return n.unaryOp(opRound) }

// Clip limits every element to [lo, hi].
func (n *Node) Clip(lo, hi float64) *Node {
	if lo > hi {
		panic(fmt.Sprintf("clip: lo %v > hi %v", lo, hi))
	}
	out := n.unaryOp(opClip)
	out.attrs.lo, out.attrs.hi = lo, hi
	return out
}

// ReLU builds max(x, 0).
func (n *Node) ReLU() *Node { return n.unaryOp(opReLU) }

// Sigmoid builds the logistic function.
func (n *Node) Sigmoid() *Node { return n.unaryOp(opSigmoid) }

// Tanh builds the hyperbolic tangent.
func (n *Node) Tanh() *Node { return n.unaryOp(opTanh) }

// Softmax normalizes along dim so the slice sums to 1.
func (n *Node) Softmax(dim int) *Node {
	d := normalizeDim("softmax", len(n.shape), dim)
	out := n.unaryOp(opSoftmax)
	out.attrs.dim = d
	return out
}

// Dot builds a 2-D matrix product: [M, K] @ [K, N] -> [M, N].
func (n *Node) Dot(other *Node) *Node {
	n.g.checkSame(n, other, "dot")
	if n.dtype != other.dtype {
		panic(fmt.Sprintf("dot: dtype mismatch: %s vs %s", n.dtype, other.dtype))
	}
	a, b := n.shape, other.shape
	if len(a) != 2 || len(b) != 2 {
		panic(fmt.Sprintf("dot: requires 2D operands, got %v and %v", a, b))
	}
	if a[1] != -1 && b[0] != -1 && a[1] != b[0] {
		panic(fmt.Sprintf("dot: inner dimensions mismatch: %v @ %v", a, b))
	}
	return n.g.add(&Node{
		kind:   opDot,
		inputs: []*Node{n, other},
		shape:  tensor.Shape{a[0], b[1]},
		dtype:  n.dtype,
	})
}

// BatchDot builds a batched matrix product over 3-D or 4-D operands.
func (n *Node) BatchDot(other *Node) *Node {
	n.g.checkSame(n, other, "batch_dot")
	if n.dtype != other.dtype {
		panic(fmt.Sprintf("batch_dot: dtype mismatch: %s vs %s", n.dtype, other.dtype))
	}
	a, b := n.shape, other.shape
	if len(a) != len(b) || (len(a) != 3 && len(a) != 4) {
		panic(fmt.Sprintf("batch_dot: requires matching 3D or 4D operands, got %v and %v", a, b))
	}
	nd := len(a)
	for i := 0; i < nd-2; i++ {
		if a[i] != -1 && b[i] != -1 && a[i] != b[i] {
			panic(fmt.Sprintf("batch_dot: batch dimensions mismatch: %v vs %v", a, b))
		}
	}
	if a[nd-1] != -1 && b[nd-2] != -1 && a[nd-1] != b[nd-2] {
		panic(fmt.Sprintf("batch_dot: inner dimensions mismatch: %v @ %v", a, b))
	}
	outShape := a.Clone()
	outShape[nd-1] = b[nd-1]
	return n.g.add(&Node{
		kind:   opBatchDot,
		inputs: []*Node{n, other},
		shape:  outShape,
		dtype:  n.dtype,
	})
}

func (n *Node) compareOp(kind opKind, other *Node) *Node {
	n.g.checkSame(n, other, kind.String())
	if n.dtype != other.dtype {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", kind, n.dtype, other.dtype))
	}
	return n.g.add(&Node{
		kind:   kind,
		inputs: []*Node{n, other},
		shape:  broadcastStatic(kind.String(), n.shape, other.shape),
		dtype:  tensor.Bool,
	})
}

// Greater builds the element-wise comparison n > other.
func (n *Node) Greater(other *Node) *Node { return n.compareOp(opGreater, other) }

// GreaterEqual builds the element-wise comparison n >= other.
func (n *Node) GreaterEqual(other *Node) *Node { return n.compareOp(opGreaterEqual, other) }

// Lower builds the element-wise comparison n < other.
func (n *Node) Lower(other *Node) *Node { return n.compareOp(opLower, other) }

// LowerEqual builds the element-wise comparison n <= other.
func (n *Node) LowerEqual(other *Node) *Node { return n.compareOp(opLowerEqual, other) }

// Equal builds the element-wise comparison n == other.
func (n *Node) Equal(other *Node) *Node { return n.compareOp(opEqual, other) }

// NotEqual builds the element-wise comparison n != other.
func (n *Node) NotEqual(other *Node) *Node { return n.compareOp(opNotEqual, other) }

// And builds the element-wise logical AND of Bool nodes.
func (n *Node) And(other *Node) *Node {
	if n.dtype != tensor.Bool {
		panic(fmt.Sprintf("and: requires bool operands, got %s", n.dtype))
	}
	return n.binaryOp(opAnd, other)
}

// Or builds the element-wise logical OR of Bool nodes.
func (n *Node) Or(other *Node) *Node {
	if n.dtype != tensor.Bool {
		panic(fmt.Sprintf("or: requires bool operands, got %s", n.dtype))
	}
	return n.binaryOp(opOr, other)
}

// Not builds the element-wise logical NOT of a Bool node.
func (n *Node) Not() *Node {
	if n.dtype != tensor.Bool {
		panic(fmt.Sprintf("not: requires bool operand, got %s", n.dtype))
	}
	return n.unaryOp(opNot)
}

// Sum reduces the whole tensor to a scalar.
func (n *Node) Sum() *Node {
	return n.g.add(&Node{kind: opSum, inputs: []*Node{n}, shape: tensor.Shape{}, dtype: n.dtype})
}

// reducedStatic mirrors the engines' reduction shape rule on static shapes.
func reducedStatic(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

func (n *Node) reduceOp(kind opKind, dim int, keepDim bool) *Node {
	d := normalizeDim(kind.String(), len(n.shape), dim)
	return n.g.add(&Node{
		kind:   kind,
		inputs: []*Node{n},
		shape:  reducedStatic(n.shape, d, keepDim),
		dtype:  n.dtype,
		attrs:  attrs{dim: d, keepDim: keepDim},
	})
}

// SumDim sums along dim.
func (n *Node) SumDim(dim int, keepDim bool) *Node { return n.reduceOp(opSumDim, dim, keepDim) }

// MeanDim averages along dim.
func (n *Node) MeanDim(dim int, keepDim bool) *Node { return n.reduceOp(opMeanDim, dim, keepDim) }

// MaxDim takes the maximum along dim.
func (n *Node) MaxDim(dim int, keepDim bool) *Node { return n.reduceOp(opMaxDim, dim, keepDim) }

// MinDim takes the minimum along dim.
func (n *Node) MinDim(dim int, keepDim bool) *Node { return n.reduceOp(opMinDim, dim, keepDim) }

// ProdDim multiplies along dim.
func (n *Node) ProdDim(dim int, keepDim bool) *Node { return n.reduceOp(opProdDim, dim, keepDim) }

// Argmax returns Int64 indices of the maxima along dim.
func (n *Node) Argmax(dim int) *Node {
	d := normalizeDim("argmax", len(n.shape), dim)
	return n.g.add(&Node{
		kind:   opArgmax,
		inputs: []*Node{n},
		shape:  reducedStatic(n.shape, d, false),
		dtype:  tensor.Int64,
		attrs:  attrs{dim: d},
	})
}

// Argmin returns Int64 indices of the minima along dim.
func (n *Node) Argmin(dim int) *Node {
	d := normalizeDim("argmin", len(n.shape), dim)
	return n.g.add(&Node{
		kind:   opArgmin,
		inputs: []*Node{n},
		shape:  reducedStatic(n.shape, d, false),
		dtype:  tensor.Int64,
		attrs:  attrs{dim: d},
	})
}

// Reshape rearranges the node into a fully-defined target shape.
func (n *Node) Reshape(shape tensor.Shape) *Node {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if staticShape(n.shape) && n.shape.NumElements() != shape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v into %v", n.shape, shape))
	}
	return n.g.add(&Node{
		kind:   opReshape,
		inputs: []*Node{n},
		shape:  shape.Clone(),
		dtype:  n.dtype,
		attrs:  attrs{shape: shape.Clone()},
	})
}

// Transpose permutes axes; with no axes the order is reversed.
func (n *Node) Transpose(axes ...int) *Node {
	rank := len(n.shape)
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: %d axes for rank-%d node", len(axes), rank))
	}
	seen := make([]bool, rank)
	outShape := make(tensor.Shape, rank)
	for i, ax := range axes {
		if ax < 0 || ax >= rank {
			panic(fmt.Sprintf("transpose: axis %d out of range for rank %d", ax, rank))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
		outShape[i] = n.shape[ax]
	}
	return n.g.add(&Node{
		kind:   opTranspose,
		inputs: []*Node{n},
		shape:  outShape,
		dtype:  n.dtype,
		attrs:  attrs{axes: append([]int(nil), axes...)},
	})
}

// Concat joins this node with others along dim.
func (n *Node) Concat(others []*Node, dim int) *Node {
	all := append([]*Node{n}, others...)
	d := normalizeDim("concat", len(n.shape), dim)

	total := 0
	for _, m := range all {
		n.g.checkSame(n, m, "concat")
		if m.dtype != n.dtype {
			panic(fmt.Sprintf("concat: dtype mismatch: %s vs %s", m.dtype, n.dtype))
		}
		if len(m.shape) != len(n.shape) {
			panic(fmt.Sprintf("concat: rank mismatch: %v vs %v", m.shape, n.shape))
		}
		if total >= 0 && m.shape[d] >= 0 {
			total += m.shape[d]
		} else {
			total = -1
		}
	}

	outShape := n.shape.Clone()
	outShape[d] = total
	return n.g.add(&Node{
		kind:   opConcat,
		inputs: all,
		shape:  outShape,
		dtype:  n.dtype,
		attrs:  attrs{dim: d},
	})
}

// Squeeze removes a dimension of size 1.
func (n *Node) Squeeze(dim int) *Node {
	d := normalizeDim("squeeze", len(n.shape), dim)
	if n.shape[d] != 1 && n.shape[d] != -1 {
		panic(fmt.Sprintf("squeeze: axis %d has size %d, not 1", d, n.shape[d]))
	}
	return n.g.add(&Node{
		kind:   opSqueeze,
		inputs: []*Node{n},
		shape:  reducedStatic(n.shape, d, false),
		dtype:  n.dtype,
		attrs:  attrs{dim: d},
	})
}

// ExpandDims inserts a dimension of size 1 at dim.
func (n *Node) ExpandDims(dim int) *Node {
	rank := len(n.shape)
	d := dim
	if d < 0 {
		d += rank + 1
	}
	if d < 0 || d > rank {
		panic(fmt.Sprintf("expand_dims: axis %d out of range for rank %d", dim, rank))
	}
	outShape := make(tensor.Shape, 0, rank+1)
	outShape = append(outShape, n.shape[:d]...)
	outShape = append(outShape, 1)
	outShape = append(outShape, n.shape[d:]...)
	return n.g.add(&Node{
		kind:   opExpandDims,
		inputs: []*Node{n},
		shape:  outShape,
		dtype:  n.dtype,
		attrs:  attrs{dim: d},
	})
}

// Expand broadcasts the node to a fully-defined target shape.
func (n *Node) Expand(shape tensor.Shape) *Node {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}
	return n.g.add(&Node{
		kind:   opExpand,
		inputs: []*Node{n},
		shape:  shape.Clone(),
		dtype:  n.dtype,
		attrs:  attrs{shape: shape.Clone()},
	})
}

// Gather selects elements along dim using an integer index node.
func (n *Node) Gather(dim int, index *Node) *Node {
	n.g.checkSame(n, index, "gather")
	if index.dtype != tensor.Int32 && index.dtype != tensor.Int64 {
		panic(fmt.Sprintf("gather: index must be int32 or int64, got %s", index.dtype))
	}
	d := normalizeDim("gather", len(n.shape), dim)
	if len(index.shape) != len(n.shape) {
		panic(fmt.Sprintf("gather: index rank %d != input rank %d", len(index.shape), len(n.shape)))
	}
	return n.g.add(&Node{
		kind:   opGather,
		inputs: []*Node{n, index},
		shape:  index.shape.Clone(),
		dtype:  n.dtype,
		attrs:  attrs{dim: d},
	})
}

// Where selects n where cond holds and other elsewhere.
func (g *Graph) Where(cond, x, y *Node) *Node {
	g.checkSame(cond, x, "where")
	g.checkSame(cond, y, "where")
	if cond.dtype != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", cond.dtype))
	}
	if x.dtype != y.dtype {
		panic(fmt.Sprintf("where: dtype mismatch: %s vs %s", x.dtype, y.dtype))
	}
	shape := broadcastStatic("where", x.shape, y.shape)
	shape = broadcastStatic("where", shape, cond.shape)
	return g.add(&Node{
		kind:   opWhere,
		inputs: []*Node{cond, x, y},
		shape:  shape,
		dtype:  x.dtype,
	})
}

// OneHot encodes an integer node as one-hot vectors along a new trailing axis.
func (n *Node) OneHot(depth int, dtype tensor.DataType) *Node {
	if n.dtype != tensor.Int32 && n.dtype != tensor.Int64 {
		panic(fmt.Sprintf("one_hot: indices must be int32 or int64, got %s", n.dtype))
	}
	if depth <= 0 {
		panic(fmt.Sprintf("one_hot: depth must be positive, got %d", depth))
	}
	return n.g.add(&Node{
		kind:   opOneHot,
		inputs: []*Node{n},
		shape:  append(n.shape.Clone(), depth),
		dtype:  dtype,
		attrs:  attrs{depth: depth},
	})
}

// Cast converts the node to another dtype.
func (n *Node) Cast(dtype tensor.DataType) *Node {
	if dtype == n.dtype {
		return n
	}
	out := n.unaryOp(opCast)
	out.dtype = dtype
	return out
}

// StopGradient passes values through unchanged and blocks reverse flow.
func (n *Node) StopGradient() *Node {
	return n.unaryOp(opStopGradient)
}

// Switch picks x when cond (a Bool scalar or tensor) holds, y otherwise.
// With a scalar condition the chosen branch's value is returned whole.
func (g *Graph) Switch(cond, x, y *Node) *Node {
	g.checkSame(cond, x, "switch")
	g.checkSame(cond, y, "switch")
	if cond.dtype != tensor.Bool {
		panic(fmt.Sprintf("switch: condition must be bool, got %s", cond.dtype))
	}
	if x.dtype != y.dtype {
		panic(fmt.Sprintf("switch: dtype mismatch: %s vs %s", x.dtype, y.dtype))
	}
	return g.add(&Node{
		kind:   opSwitch,
		inputs: []*Node{cond, x, y},
		shape:  broadcastStatic("switch", x.shape, y.shape),
		dtype:  x.dtype,
	})
}

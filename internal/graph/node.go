package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// opKind identifies the operation a node performs.
type opKind int

const (
	opPlaceholder opKind = iota
	opVariable
	opConstant
	opRandomUniform
	opRandomNormal

	opAdd
	opSub
	opMul
	opDiv
	opPow
	opMaximum
	opMinimum

	opAddScalar
	opSubScalar
	opMulScalar
	opDivScalar
	opPowScalar

	opNeg
	opExp
	opLog
	opSqrt
	opAbs
	opSign
	opRound
	opClip

	opReLU
	opSigmoid
	opTanh
	opSoftmax

	opDot
	opBatchDot

	opGreater
	opGreaterEqual
	opLower
	opLowerEqual
	opEqual
	opNotEqual

	opAnd
	opOr
	opNot

	opSum
	opSumDim
	opMeanDim
	opMaxDim
	opMinDim
	opProdDim
	opArgmax
	opArgmin

	opReshape
	opTranspose
	opConcat
	opSqueeze
	opExpandDims
	opExpand

	opGather
	opWhere
	opOneHot
	opCast

	opSwitch
	opStopGradient
)

var opNames = map[opKind]string{
	opPlaceholder: "placeholder", opVariable: "variable", opConstant: "constant",
	opRandomUniform: "random_uniform", opRandomNormal: "random_normal",
	opAdd: "add", opSub: "sub", opMul: "mul", opDiv: "div", opPow: "pow",
	opMaximum: "maximum", opMinimum: "minimum",
	opAddScalar: "add_scalar", opSubScalar: "sub_scalar", opMulScalar: "mul_scalar",
	opDivScalar: "div_scalar", opPowScalar: "pow_scalar",
	opNeg: "neg", opExp: "exp", opLog: "log", opSqrt: "sqrt", opAbs: "abs",
	opSign: "sign", opRound: "round", opClip: "clip",
	opReLU: "relu", opSigmoid: "sigmoid", opTanh: "tanh", opSoftmax: "softmax",
	opDot: "dot", opBatchDot: "batch_dot",
	opGreater: "greater", opGreaterEqual: "greater_equal", opLower: "lower",
	opLowerEqual: "lower_equal", opEqual: "equal", opNotEqual: "not_equal",
	opAnd: "and", opOr: "or", opNot: "not",
	opSum: "sum", opSumDim: "sum_dim", opMeanDim: "mean_dim", opMaxDim: "max_dim",
	opMinDim: "min_dim", opProdDim: "prod_dim", opArgmax: "argmax", opArgmin: "argmin",
	opReshape: "reshape", opTranspose: "transpose", opConcat: "concat",
	opSqueeze: "squeeze", opExpandDims: "expand_dims", opExpand: "expand",
	opGather: "gather", opWhere: "where", opOneHot: "one_hot", opCast: "cast",
	opSwitch: "switch", opStopGradient: "stop_gradient",
}

func (k opKind) String() string {
	if s, ok := opNames[k]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// attrs carries per-operation parameters outside the node inputs.
type attrs struct {
	dim     int
	keepDim bool
	axes    []int
	shape   tensor.Shape
	scalar  float64
	lo, hi  float64
	depth   int
}

// Node is one symbolic value in a Graph: an operation, its inputs, and the
// statically inferred shape and dtype of its result. Placeholder shapes may
// contain -1 for dimensions bound at call time.
type Node struct {
	g      *Graph
	id     int
	kind   opKind
	inputs []*Node
	shape  tensor.Shape
	dtype  tensor.DataType
	name   string
	value  *tensor.RawTensor // variables and constants only
	attrs  attrs

	// learningPhase marks the graph's shared training-mode placeholder.
	learningPhase bool
}

// Shape returns the node's static shape. Unknown dimensions are -1.
func (n *Node) Shape() tensor.Shape {
	return n.shape.Clone()
}

// DType returns the node's element type.
func (n *Node) DType() tensor.DataType {
	return n.dtype
}

// Name returns the node's name; auto-generated when not set explicitly.
func (n *Node) Name() string {
	return n.name
}

// Graph returns the owning graph.
func (n *Node) Graph() *Graph {
	return n.g
}

// Value returns the current tensor of a variable node.
func (n *Node) Value() *tensor.RawTensor {
	if n.kind != opVariable {
		panic(fmt.Sprintf("graph: Value on %s node %q", n.kind, n.name))
	}
	return n.value
}

// SetValue replaces a variable's tensor. Shape and dtype must match.
func (n *Node) SetValue(v *tensor.RawTensor) error {
	if n.kind != opVariable {
		return fmt.Errorf("graph: SetValue on %s node %q", n.kind, n.name)
	}
	if !v.Shape().Equal(n.shape) {
		return fmt.Errorf("graph: variable %q has shape %v, got %v", n.name, n.shape, v.Shape())
	}
	if v.DType() != n.dtype {
		return fmt.Errorf("graph: variable %q has dtype %s, got %s", n.name, n.dtype, v.DType())
	}
	n.value = v
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%q)%v:%s", n.kind, n.name, n.shape, n.dtype)
}

// staticShape reports whether every dimension is known.
func staticShape(s tensor.Shape) bool {
	for _, d := range s {
		if d < 0 {
			return false
		}
	}
	return true
}

package graph

import (
	"fmt"

	"github.com/axon-ml/axon/internal/tensor"
)

// eval computes one node given its inputs' values. Engine panics surface as
// errors so a bad call tears down the Call, not the process.
func (g *Graph) eval(n *Node, values map[*Node]*tensor.RawTensor, state *callState) (out *tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("graph: evaluating %s: %v", n, r)
		}
	}()

	in := func(i int) *tensor.RawTensor { return values[n.inputs[i]] }
	e := g.engine

	switch n.kind {
	case opPlaceholder:
		if n.learningPhase {
			return tensor.ScalarRaw(boolToFloat(state.training), tensor.Bool, e.Device()), nil
		}
		return nil, fmt.Errorf("graph: placeholder %q was not fed", n.name)
	case opVariable, opConstant:
		return n.value, nil
	case opRandomUniform:
		return e.RandomUniform(n.attrs.shape, n.dtype), nil
	case opRandomNormal:
		return e.RandomNormal(n.attrs.shape, n.dtype), nil

	case opAdd:
		return e.Add(in(0), in(1)), nil
	case opSub:
		return e.Sub(in(0), in(1)), nil
	case opMul:
		return e.Mul(in(0), in(1)), nil
	case opDiv:
		return e.Div(in(0), in(1)), nil
	case opPow:
		return e.Pow(in(0), in(1)), nil
	case opMaximum:
		return e.Maximum(in(0), in(1)), nil
	case opMinimum:
		return e.Minimum(in(0), in(1)), nil

	case opAddScalar:
		return e.AddScalar(in(0), n.attrs.scalar), nil
	case opSubScalar:
		return e.SubScalar(in(0), n.attrs.scalar), nil
	case opMulScalar:
		return e.MulScalar(in(0), n.attrs.scalar), nil
	case opDivScalar:
		return e.DivScalar(in(0), n.attrs.scalar), nil
	case opPowScalar:
		return e.PowScalar(in(0), n.attrs.scalar), nil

	case opNeg:
		return e.Neg(in(0)), nil
	case opExp:
		return e.Exp(in(0)), nil
	case opLog:
		return e.Log(in(0)), nil
	case opSqrt:
		return e.Sqrt(in(0)), nil
	case opAbs:
		return e.Abs(in(0)), nil
	case opSign:
		return e.Sign(in(0)), nil
	case opRound:
		return e.Round(in(0)), nil
	case opClip:
		return e.Clip(in(0), n.attrs.lo, n.attrs.hi), nil

	case opReLU:
		return e.ReLU(in(0)), nil
	case opSigmoid:
		return e.Sigmoid(in(0)), nil
	case opTanh:
		return e.Tanh(in(0)), nil
	case opSoftmax:
		return e.Softmax(in(0), n.attrs.dim), nil

	case opDot:
		return e.MatMul(in(0), in(1)), nil
	case opBatchDot:
		return e.BatchMatMul(in(0), in(1)), nil

	case opGreater:
		return e.Greater(in(0), in(1)), nil
	case opGreaterEqual:
		return e.GreaterEqual(in(0), in(1)), nil
	case opLower:
		return e.Lower(in(0), in(1)), nil
	case opLowerEqual:
		return e.LowerEqual(in(0), in(1)), nil
	case opEqual:
		return e.Equal(in(0), in(1)), nil
	case opNotEqual:
		return e.NotEqual(in(0), in(1)), nil

	case opAnd:
		return e.And(in(0), in(1)), nil
	case opOr:
		return e.Or(in(0), in(1)), nil
	case opNot:
		return e.Not(in(0)), nil

	case opSum:
		return e.Sum(in(0)), nil
	case opSumDim:
		return e.SumDim(in(0), n.attrs.dim, n.attrs.keepDim), nil
	case opMeanDim:
		return e.MeanDim(in(0), n.attrs.dim, n.attrs.keepDim), nil
	case opMaxDim:
		return e.MaxDim(in(0), n.attrs.dim, n.attrs.keepDim), nil
	case opMinDim:
		return e.MinDim(in(0), n.attrs.dim, n.attrs.keepDim), nil
	case opProdDim:
		return e.ProdDim(in(0), n.attrs.dim, n.attrs.keepDim), nil
	case opArgmax:
		return e.Argmax(in(0), n.attrs.dim), nil
	case opArgmin:
		return e.Argmin(in(0), n.attrs.dim), nil

	case opReshape:
		return e.Reshape(in(0), n.attrs.shape), nil
	case opTranspose:
		return e.Transpose(in(0), n.attrs.axes...), nil
	case opConcat:
		ins := make([]*tensor.RawTensor, len(n.inputs))
		for i := range n.inputs {
			ins[i] = values[n.inputs[i]]
		}
		return e.Cat(ins, n.attrs.dim), nil
	case opSqueeze:
		return e.Squeeze(in(0), n.attrs.dim), nil
	case opExpandDims:
		return e.Unsqueeze(in(0), n.attrs.dim), nil
	case opExpand:
		return e.Expand(in(0), n.attrs.shape), nil

	case opGather:
		return e.Gather(in(0), n.attrs.dim, in(1)), nil
	case opWhere:
		return e.Where(in(0), in(1), in(2)), nil
	case opOneHot:
		return e.OneHot(in(0), n.attrs.depth, n.dtype), nil
	case opCast:
		return e.Cast(in(0), n.dtype), nil

	case opSwitch:
		cond := in(0)
		if len(cond.Shape()) == 0 {
			if cond.AsBool()[0] {
				return in(1), nil
			}
			return in(2), nil
		}
		return e.Where(cond, in(1), in(2)), nil
	case opStopGradient:
		return in(0), nil

	default:
		return nil, fmt.Errorf("graph: no executor for %s", n.kind)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

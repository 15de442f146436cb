// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public tensor API of Axon: shapes, data types, the
// raw tensor value, the typed generic wrapper, and the Backend interface
// every compute engine implements.
//
// The package re-exports the internal implementation through type aliases so
// engines and the graph package operate on the very same types.
//
// Example:
//
//	import (
//	    "github.com/axon-ml/axon/backend/cpu"
//	    "github.com/axon-ml/axon/tensor"
//	)
//
//	func main() {
//	    engine := cpu.New()
//	    x := tensor.Randn[float32](tensor.Shape{32, 64}, engine)
//	    y := engine.Softmax(x.Raw(), -1)
//	    _ = y
//	}
package tensor

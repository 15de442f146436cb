// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/axon-ml/axon/internal/tensor"
)

// Backend is the operation vocabulary every compute engine implements.
// See the internal definition for the method-by-method contract.
type Backend = tensor.Backend

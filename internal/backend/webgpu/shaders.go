//go:build windows

package webgpu

import "fmt"

// workgroupSize is the thread count of one-dimensional compute dispatches.
const workgroupSize = 256

// tileSize is the edge length of the 2-D workgroups used by matmul and
// transpose.
const tileSize = 16

// Element-wise shaders are generated from templates: the WGSL boilerplate is
// identical per arity, only the result expression differs.

// binaryShaderWGSL builds a two-operand element-wise shader. expr may use
// a[idx] and b[idx].
func binaryShaderWGSL(expr string) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = %s;
    }
}
`, workgroupSize, expr)
}

// unaryShaderWGSL builds a one-operand element-wise shader. expr may use x.
func unaryShaderWGSL(expr string) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        result[idx] = %s;
    }
}
`, workgroupSize, expr)
}

// scalarShaderWGSL builds a one-operand shader with a uniform scalar. expr
// may use x and params.scalar.
func scalarShaderWGSL(expr string) string {
	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    scalar: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        result[idx] = %s;
    }
}
`, workgroupSize, expr)
}

// clipShader clamps every element to [params.lo, params.hi].
const clipShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    lo: f32,
    hi: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = clamp(input[idx], params.lo, params.hi);
    }
}
`

// matmulShader computes C = A @ B for A [M, K] and B [K, N].
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,
    K: u32,
    N: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }

    result[row * params.N + col] = sum;
}
`

// batchMatMulShader computes C[b] = A[b] @ B[b] for A [batch, M, K] and
// B [batch, K, N].
const batchMatMulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    batch: u32,
    M: u32,
    K: u32,
    N: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let batch_idx = global_id.z;
    let row = global_id.y;
    let col = global_id.x;

    if (batch_idx >= params.batch || row >= params.M || col >= params.N) {
        return;
    }

    let a_off = batch_idx * params.M * params.K;
    let b_off = batch_idx * params.K * params.N;

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[a_off + row * params.K + k] * b[b_off + k * params.N + col];
    }

    result[batch_idx * params.M * params.N + row * params.N + col] = sum;
}
`

// transposeShader transposes a 2-D matrix.
const transposeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.rows || col >= params.cols) {
        return;
    }

    result[col * params.rows + row] = input[row * params.cols + col];
}
`

// softmaxShader applies max-shifted softmax to each lane of the trailing
// dimension. One invocation handles one lane.
const softmaxShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    lanes: u32,
    lane_size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let lane = global_id.x;
    if (lane >= params.lanes) {
        return;
    }

    let offset = lane * params.lane_size;

    var max_val: f32 = input[offset];
    for (var i: u32 = 1u; i < params.lane_size; i = i + 1u) {
        max_val = max(max_val, input[offset + i]);
    }

    var sum: f32 = 0.0;
    for (var i: u32 = 0u; i < params.lane_size; i = i + 1u) {
        let e = exp(input[offset + i] - max_val);
        result[offset + i] = e;
        sum = sum + e;
    }

    for (var i: u32 = 0u; i < params.lane_size; i = i + 1u) {
        result[offset + i] = result[offset + i] / sum;
    }
}
`

// sumLanesShader sums each lane of the trailing dimension. One invocation
// handles one lane.
const sumLanesShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    lanes: u32,
    lane_size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let lane = global_id.x;
    if (lane >= params.lanes) {
        return;
    }

    let offset = lane * params.lane_size;
    var sum: f32 = 0.0;
    for (var i: u32 = 0u; i < params.lane_size; i = i + 1u) {
        sum = sum + input[offset + i];
    }

    result[lane] = sum;
}
`

// sumReduceShader performs one round of tree reduction in workgroup shared
// memory, leaving one partial sum per workgroup.
const sumReduceShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> shared_data: array<f32, 256>;

@compute @workgroup_size(256)
fn main(
    @builtin(global_invocation_id) global_id: vec3<u32>,
    @builtin(local_invocation_id) local_id: vec3<u32>,
    @builtin(workgroup_id) workgroup_id: vec3<u32>
) {
    let tid = local_id.x;
    let gid = global_id.x;

    if (gid < params.size) {
        shared_data[tid] = input[gid];
    } else {
        shared_data[tid] = 0.0;
    }
    workgroupBarrier();

    for (var s: u32 = 128u; s > 0u; s = s >> 1u) {
        if (tid < s) {
            shared_data[tid] = shared_data[tid] + shared_data[tid + s];
        }
        workgroupBarrier();
    }

    if (tid == 0u) {
        result[workgroup_id.x] = shared_data[0];
    }
}
`

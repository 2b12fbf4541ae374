//go:build windows

package webgpu

// workgroupSize is the number of invocations per 1-D workgroup.
const workgroupSize = 256

// tile is the side of the square tile used by the matmul shader.
const tile = 16

// matmulShader computes C = A @ B for row-major A [M, K] and B [K, N],
// staging 16x16 tiles of both operands in workgroup memory.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;

struct Dims {
    m: u32,
    k: u32,
    n: u32,
}
@group(0) @binding(3) var<uniform> dims: Dims;

var<workgroup> tileA: array<array<f32, 16>, 16>;
var<workgroup> tileB: array<array<f32, 16>, 16>;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let row = gid.y;
    let col = gid.x;
    var acc: f32 = 0.0;

    let tiles = (dims.k + 15u) / 16u;
    for (var t: u32 = 0u; t < tiles; t = t + 1u) {
        let ak = t * 16u + lid.x;
        let bk = t * 16u + lid.y;
        if (row < dims.m && ak < dims.k) {
            tileA[lid.y][lid.x] = a[row * dims.k + ak];
        } else {
            tileA[lid.y][lid.x] = 0.0;
        }
        if (col < dims.n && bk < dims.k) {
            tileB[lid.y][lid.x] = b[bk * dims.n + col];
        } else {
            tileB[lid.y][lid.x] = 0.0;
        }
        workgroupBarrier();

        for (var i: u32 = 0u; i < 16u; i = i + 1u) {
            acc = acc + tileA[lid.y][i] * tileB[i][lid.x];
        }
        workgroupBarrier();
    }

    if (row < dims.m && col < dims.n) {
        c[row * dims.n + col] = acc;
    }
}
`

// unaryShader is the template for element-wise activations; %s is replaced
// by an expression over x.
const unaryShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Len {
    n: u32,
}
@group(0) @binding(2) var<uniform> len: Len;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= len.n) {
        return;
    }
    let x = input[i];
    result[i] = %s;
}
`

// Activation bodies. The sigmoid form never evaluates exp of a large
// positive argument.
const (
	sigmoidExpr = "select(exp(x) / (1.0 + exp(x)), 1.0 / (1.0 + exp(-x)), x >= 0.0)"
	tanhExpr    = "tanh(x)"
)

// Package wmma implements a software rendition of a wavefront
// matrix-multiply-accumulate (WMMA) GEMM kernel: D = alpha*A*B + beta*C.
//
// The output matrix is tiled into fixed-size blocks, each owned by one
// "wave" (a goroutine standing in for a hardware execution group). Waves
// are grouped into workgroups that share a staging buffer modeled after
// on-chip LDS memory, and each wave runs a software-pipelined loop over
// the reduction dimension: while the current K-slice is consumed from the
// staging buffer, the next slice is prefetched from the input matrices.
//
// Kernels are instantiated per (block shape, storage types, layouts)
// combination with NewKernel, or resolved at runtime from a
// (input, output, compute) dtype tuple with GemmFor.
package wmma

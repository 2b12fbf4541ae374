// Package webgpu runs the dense kernels of the encoder (matrix products and
// gate activations) on the GPU through go-webgpu. It is available on Windows,
// where wgpu-native ships as a DLL; everything else falls through to the
// embedded CPU backend.
package webgpu

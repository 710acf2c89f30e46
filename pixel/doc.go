// Package pixel implements the per-pixel compositing stage of the 2D
// video output: layer word decoding, 3D layer substitution, blend
// resolution and master brightness.
//
// Everything here is a pure function of its arguments. Schedulers in the
// parent package call Compose once per output pixel; the results do not
// depend on which scheduler runs them.
//
// Colors are computed in float32. Hardware channels are 6 bits wide and
// map to [0, 1] by multiplying with 1/63; blend coefficients and
// brightness factors are 5-bit values scaled by 1/16, and the 3D alpha is
// scaled by 1/31.
package pixel

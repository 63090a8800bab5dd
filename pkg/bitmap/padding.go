package bitmap

// Padding returns the number of bytes appended to each pixel row so that the
// row length is a multiple of 4, as the BMP format requires.
//
//	pad = 4*floor((depth*width + 31) / 32) - width*depth/8
func Padding(width, depth int) int {
	natural := width * depth / 8
	aligned := 4 * ((depth*width + 31) / 32)
	return aligned - natural
}

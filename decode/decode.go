package decode

// Decode sniffs the leading bytes of data and dispatches to the packed-
// Gaussian decoder (magic "NGSP") or the PLY decoder otherwise. Both paths
// converge on the same Sample shape, so callers never need to know which
// format they received.
//
// Parameters:
//   - data: the full contents of the splat file
//
// Returns:
//   - []Sample: decoded samples (possibly empty, never containing NaN
//     positions)
//   - error: *Error describing why decoding failed
func Decode(data []byte) ([]Sample, error) {
	if isPacked(data) {
		return DecodePacked(data)
	}
	return DecodePLY(data)
}

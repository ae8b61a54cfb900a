package css

// StripComments exposes comment stripping for tests.
func StripComments(src []byte) []byte {
	return stripComments(src)
}

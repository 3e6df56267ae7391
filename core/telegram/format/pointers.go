package format

// DerefString safely dereferences a *string and returns a default value if nil.
func DerefString(s *string, defaultVal string) string {
	if s != nil {
		return *s
	}
	return defaultVal
}

// StringPtr returns a pointer to the provided string.
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to the provided float64.
func Float64Ptr(f float64) *float64 {
	return &f
}

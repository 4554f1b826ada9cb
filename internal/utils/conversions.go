package utils

// ToStringSlice keeps the string elements of a decoded JSON array. ok is false
// when any element is not a string.
func ToStringSlice(slice []any) (strs []string, ok bool) {
	stringSlice := make([]string, 0, len(slice))
	for _, v := range slice {
		s, isString := v.(string)
		if !isString {
			return nil, false
		}
		stringSlice = append(stringSlice, s)
	}
	return stringSlice, true
}

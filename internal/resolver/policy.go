package resolver

// SelectionPolicy picks one element out of an occurrence list of length n
// (n > 0) and returns its position. A position outside [0, n) selects nothing.
//
// Occurrence lists hold every report entry sharing a name: C++ overloads,
// duplicate emission, or unrelated same-named types from different headers.
// Nothing in the reports says which one the caller meant.
type SelectionPolicy func(n int) int

// FirstReportOrder selects the earliest report entry. It is deterministic for
// identical report content but does not disambiguate true overload sets.
func FirstReportOrder(n int) int {
	return 0
}

func pick[T any](policy SelectionPolicy, list []T) (T, bool) {
	var zero T
	if len(list) == 0 {
		return zero, false
	}
	i := policy(len(list))
	if i < 0 || i >= len(list) {
		return zero, false
	}
	return list[i], true
}

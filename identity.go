package attach

import "reflect"

// sameBinding decides whether a binding still holds the value it held at
// backup time. Reference kinds compare by identity, so mutating a shared
// object in place does not count as rebinding; plain value kinds compare by
// equality, with a deep-equality fallback for values Go cannot compare.
func sameBinding(current, original any) bool {
	if current == nil || original == nil {
		return current == nil && original == nil
	}

	cv := reflect.ValueOf(current)
	ov := reflect.ValueOf(original)
	if cv.Kind() != ov.Kind() {
		return false
	}

	switch cv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return cv.Pointer() == ov.Pointer()
	case reflect.Slice:
		return cv.Pointer() == ov.Pointer() && cv.Len() == ov.Len()
	default:
		if cv.Type() != ov.Type() {
			return false
		}
		if cv.Comparable() {
			return current == original
		}
		return reflect.DeepEqual(current, original)
	}
}

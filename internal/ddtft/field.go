package ddtft

// Confidence levels of the extraction methods. A field only takes a new
// value when it is offered with a strictly higher confidence than the one
// it already holds; ties keep the earlier value.
const (
	confMetadata       = 1.00
	confHeaderRow      = 0.90
	confNameSuffix     = 0.90
	confTwoColumn      = 0.80
	confLabeled        = 0.80
	confNameAddress    = 0.80
	confOrderLookup    = 0.75
	confTrailingStreet = 0.70
	confCodeLookup     = 0.70
	confFileName       = 0.60
	confMarkerAddress  = 0.60
	confNameAccum      = 0.60
	confSingleColumn   = 0.50
	confClientAddress  = 0.45
	confFallback       = 0.40
)

// field is a record slot together with the method that filled it.
type field[T any] struct {
	value      T
	method     string
	confidence float64
	set        bool
}

// offer proposes a value. It reports whether the value was taken.
func (f *field[T]) offer(v T, method string, confidence float64) bool {
	if f.set && confidence <= f.confidence {
		return false
	}
	f.value = v
	f.method = method
	f.confidence = confidence
	f.set = true
	return true
}

// reset empties the slot, e.g. when a guard rejects its value.
func (f *field[T]) reset() {
	var zero T
	*f = field[T]{value: zero}
}

func (f *field[T]) get() T {
	return f.value
}

package histogram

import "math"

// ElemType is the numeric representation of histogram cells. Values match the
// single-channel OpenCV type codes so records stay readable by OpenCV-based
// consumers.
type ElemType int

const (
	Uint8   ElemType = 0 // CV_8U
	Int8    ElemType = 1 // CV_8S
	Uint16  ElemType = 2 // CV_16U
	Int16   ElemType = 3 // CV_16S
	Int32   ElemType = 4 // CV_32S
	Float32 ElemType = 5 // CV_32F
	Float64 ElemType = 6 // CV_64F
)

func (e ElemType) String() string {
	switch e {
	case Uint8:
		return "8U"
	case Int8:
		return "8S"
	case Uint16:
		return "16U"
	case Int16:
		return "16S"
	case Int32:
		return "32S"
	case Float32:
		return "32F"
	case Float64:
		return "64F"
	default:
		return "Unknown"
	}
}

// Valid reports whether e is a known element type.
func (e ElemType) Valid() bool {
	return e >= Uint8 && e <= Float64
}

// IsFloat reports whether e is a floating-point type.
func (e ElemType) IsFloat() bool {
	return e == Float32 || e == Float64
}

// Bits returns the storage width of one cell.
func (e ElemType) Bits() int {
	switch e {
	case Uint8, Int8:
		return 8
	case Uint16, Int16:
		return 16
	case Int32, Float32:
		return 32
	default:
		return 64
	}
}

// Quantize rounds v to the nearest value representable by e, saturating
// integer types at their bounds.
func (e ElemType) Quantize(v float64) float64 {
	switch e {
	case Float32:
		return float64(float32(v))
	case Float64:
		return v
	}
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := e.limits()
	return math.Min(math.Max(math.RoundToEven(v), lo), hi)
}

func (e ElemType) limits() (lo, hi float64) {
	switch e {
	case Uint8:
		return 0, math.MaxUint8
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Uint16:
		return 0, math.MaxUint16
	case Int16:
		return math.MinInt16, math.MaxInt16
	default:
		return math.MinInt32, math.MaxInt32
	}
}

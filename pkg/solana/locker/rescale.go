package locker

import (
	"github.com/holiman/uint256"
)

const (
	DefaultUnderlyingDecimals = 18
	DefaultNativeDecimals     = 9
)

// Rescaler converts amounts between the destination chain's precision
// (underlying) and the native token's precision. The underlying precision
// must be at least the native precision.
type Rescaler struct {
	UnderlyingDecimals uint8
	NativeDecimals     uint8
}

func NewRescaler(underlyingDecimals, nativeDecimals uint8) *Rescaler {
	return &Rescaler{
		UnderlyingDecimals: underlyingDecimals,
		NativeDecimals:     nativeDecimals,
	}
}

// UnderlyingFromNative widens a native amount to the underlying precision.
func (r *Rescaler) UnderlyingFromNative(amount uint64) (*uint256.Int, error) {
	scale, overflow, err := r.scale()
	if err != nil {
		return nil, err
	}

	if overflow {
		if amount == 0 {
			return uint256.NewInt(0), nil
		}
		return nil, ErrorUnexpectedDecimalConversion
	}

	res, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), scale)
	if overflow {
		return nil, ErrorUnexpectedDecimalConversion
	}
	return res, nil
}

// NativeFromUnderlying narrows an underlying amount to the native precision,
// truncating any digits the native precision cannot represent.
func (r *Rescaler) NativeFromUnderlying(amount *uint256.Int) (uint64, error) {
	scale, overflow, err := r.scale()
	if err != nil {
		return 0, err
	}

	if overflow {
		return 0, nil
	}

	res := new(uint256.Int).Div(amount, scale)
	if !res.IsUint64() {
		return 0, ErrorUnexpectedDecimalConversion
	}
	return res.Uint64(), nil
}

// scale returns 10^(underlying-native). overflow is set when the factor does
// not fit in 256 bits.
func (r *Rescaler) scale() (scale *uint256.Int, overflow bool, err error) {
	if r.UnderlyingDecimals < r.NativeDecimals {
		return nil, false, ErrorUnexpectedDecimalConversion
	}

	ten := uint256.NewInt(10)
	scale = uint256.NewInt(1)
	for i := r.NativeDecimals; i < r.UnderlyingDecimals; i++ {
		if _, overflow := scale.MulOverflow(scale, ten); overflow {
			return nil, true, nil
		}
	}
	return scale, false, nil
}

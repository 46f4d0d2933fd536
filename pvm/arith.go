package pvm

import "github.com/holiman/uint256"

// signExt32 sign-extends a 32-bit result to 64 bits, per §4.6's width
// contract: "compute in 32 bits, sign-extend to 64". Expressed once here and
// reused by every _32 operation (add32 and the helpers below),
// per the Design Notes' "BigInt arithmetic" guidance.
func signExt32(v uint32) uint64 { return uint64(int64(int32(v))) }

func add32(a, b uint64) uint64 { return signExt32(uint32(a) + uint32(b)) }
func sub32(a, b uint64) uint64 { return signExt32(uint32(a) - uint32(b)) }
func mul32(a, b uint64) uint64 { return signExt32(uint32(a) * uint32(b)) }

func add64(a, b uint64) uint64 { return a + b }
func sub64(a, b uint64) uint64 { return a - b }
func mul64(a, b uint64) uint64 { return a * b }

// divU32/remU32 etc. implement §4.6's division/remainder edge-case
// contract. UDIV(x,0) = 2^w-1, UREM(x,0) = x.
func divU32(a, b uint64) uint64 {
	ua, ub := uint32(a), uint32(b)
	if ub == 0 {
		return signExt32(^uint32(0))
	}
	return signExt32(ua / ub)
}

func remU32(a, b uint64) uint64 {
	ua, ub := uint32(a), uint32(b)
	if ub == 0 {
		return signExt32(ua)
	}
	return signExt32(ua % ub)
}

func divU64(a, b uint64) uint64 {
	if b == 0 {
		return ^uint64(0)
	}
	return a / b
}

func remU64(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

// divS32/remS32: SDIV(MIN,-1) = MIN, SREM(MIN,-1) = 0; SDIV(x,0) = -1,
// SREM(x,0) = x.
func divS32(a, b uint64) uint64 {
	sa, sb := int32(a), int32(b)
	if sb == 0 {
		return signExt32(uint32(int32(-1)))
	}
	if sa == int32(-1<<31) && sb == -1 {
		return signExt32(uint32(sa))
	}
	return signExt32(uint32(sa / sb))
}

func remS32(a, b uint64) uint64 {
	sa, sb := int32(a), int32(b)
	if sb == 0 {
		return signExt32(uint32(sa))
	}
	if sa == int32(-1<<31) && sb == -1 {
		return 0
	}
	return signExt32(uint32(sa % sb))
}

func divS64(a, b uint64) uint64 {
	sa, sb := int64(a), int64(b)
	if sb == 0 {
		return uint64(-1)
	}
	if sa == int64(-1<<63) && sb == -1 {
		return uint64(sa)
	}
	return uint64(sa / sb)
}

func remS64(a, b uint64) uint64 {
	sa, sb := int64(a), int64(b)
	if sb == 0 {
		return uint64(sa)
	}
	if sa == int64(-1<<63) && sb == -1 {
		return 0
	}
	return uint64(sa % sb)
}

// shift counts are masked modulo the operand width: 5 bits for 32-bit ops,
// 6 bits for 64-bit ops.
func shloL32(a, b uint64) uint64 { return signExt32(uint32(a) << (uint32(b) & 31)) }
func shloR32(a, b uint64) uint64 { return signExt32(uint32(a) >> (uint32(b) & 31)) }
func sharR32(a, b uint64) uint64 {
	return signExt32(uint32(int32(a) >> (uint32(b) & 31)))
}

func shloL64(a, b uint64) uint64 { return a << (b & 63) }
func shloR64(a, b uint64) uint64 { return a >> (b & 63) }
func sharR64(a, b uint64) uint64 { return uint64(int64(a) >> (b & 63)) }

func rotL32(a, b uint64) uint64 {
	n := uint32(b) & 31
	v := uint32(a)
	return signExt32(v<<n | v>>(32-n)&maskShift32(n))
}

func rotR32(a, b uint64) uint64 {
	n := uint32(b) & 31
	v := uint32(a)
	return signExt32(v>>n | v<<(32-n)&maskShift32(n))
}

// maskShift32 avoids the undefined-by-convention shift-by-32 case when n=0.
func maskShift32(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return ^uint32(0)
}

func rotL64(a, b uint64) uint64 {
	n := b & 63
	if n == 0 {
		return a
	}
	return a<<n | a>>(64-n)
}

func rotR64(a, b uint64) uint64 {
	n := b & 63
	if n == 0 {
		return a
	}
	return a>>n | a<<(64-n)
}

// mulUpper64 computes the high 64 bits of a 128-bit product, with signed or
// unsigned interpretation of each input, using uint256.Int to avoid
// hand-rolled carry arithmetic for the widening multiply (§11 domain stack:
// holiman/uint256).
func mulUpper64(a, b uint64, signedA, signedB bool) uint64 {
	var ia, ib uint256.Int
	if signedA && int64(a) < 0 {
		ia.SetUint64(uint64(-int64(a)))
	} else {
		ia.SetUint64(a)
	}
	if signedB && int64(b) < 0 {
		ib.SetUint64(uint64(-int64(b)))
	} else {
		ib.SetUint64(b)
	}

	var product uint256.Int
	product.Mul(&ia, &ib)

	neg := (signedA && int64(a) < 0) != (signedB && int64(b) < 0)
	// a or b was zero: the product stays exactly 0, not 2^128.
	if neg && !product.IsZero() {
		var zero, twoPow128 uint256.Int
		twoPow128.Lsh(zero.SetOne(), 128)
		product.Sub(&twoPow128, &product)
	}
	hi := new(uint256.Int).Rsh(&product, 64)
	return hi.Uint64()
}

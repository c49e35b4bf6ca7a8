package cpu

// Bit manipulation helpers for 32-bit scratch values.
//
// All of these operate on unsigned values. Sign extension, where it is
// wanted, is done by the caller with an explicit int8/int16 conversion.

const (
	MOST  = true  // Most significant word.
	LEAST = false // Least significant word.
)

// bitRange validates an inclusive bit range of at most 16 bits.
func bitRange(first, last uint) error {
	if first > last || last > 31 || last-first > 15 {
		return ErrInvalidBitRange
	}
	return nil
}

// GetBits returns bits first..last (inclusive) of value, right aligned.
//
// Example: GetBits(0x1234, 3, 9) == 0x46
func GetBits(value uint32, first, last uint) (bits uint32, err error) {
	err = bitRange(first, last)
	if err != nil {
		return
	}

	bits = (value >> first) & ((2 << (last - first)) - 1)
	return
}

// SetBit sets bit posn of value to bit.
func SetBit(value uint32, posn uint, bit bool) (result uint32, err error) {
	if posn > 31 {
		err = ErrInvalidBitRange
		return
	}

	result = value &^ (1 << posn)
	if bit {
		result |= 1 << posn
	}
	return
}

// SetBits replaces bits first..last (inclusive) of value with the least
// significant bits of newBits.
func SetBits(value uint32, first, last uint, newBits uint32) (result uint32, err error) {
	err = bitRange(first, last)
	if err != nil {
		return
	}

	mask := uint32((2<<(last-first))-1) << first
	result = (value &^ mask) | ((newBits << first) & mask)
	return
}

// SetByte replaces byte posn (0 is least significant) of value.
func SetByte(value uint32, posn uint, data byte) (result uint32, err error) {
	if posn > 3 {
		err = ErrInvalidBitRange
		return
	}

	shift := posn * 8
	result = (value &^ (0xff << shift)) | (uint32(data) << shift)
	return
}

// GetWord returns the most or least significant word of value,
// zero extended.
func GetWord(value uint32, msw bool) uint32 {
	if msw {
		return value >> 16
	}
	return value & 0xffff
}

// SetWord replaces the most or least significant word of value with the
// low 16 bits of word.
func SetWord(value uint32, msw bool, word uint32) uint32 {
	if msw {
		return (value & 0x0000ffff) | (word << 16)
	}
	return (value & 0xffff0000) | (word & 0xffff)
}

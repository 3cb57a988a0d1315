package fmindex

// occMask[k] keeps bases 0..k of a packed 64-bit base word and clears the rest.
// Entries 0..15 only touch the low 32-bit half, which is also what the 4-way
// rank uses on its 16-base groups.
var occMask = func() (m [32]uint64) {
	for k := range m {
		for j := 0; j <= k; j++ {
			m[k] |= 3 << baseShift(j)
		}
	}
	return m
}()

// nMask turns a symbol's 2-bit code into 11 when XORed, so that occAux counts it.
var nMask = [5]uint64{
	0xffffffffffffffff,
	0xaaaaaaaaaaaaaaaa,
	0x5555555555555555,
	0x0,
	0xffffffffffffffff,
}

// cntTable[b] holds, one byte per symbol, how many of the four bases packed in
// b carry each code.
var cntTable = func() (t [256]uint32) {
	for i := range t {
		var x uint32
		for c := 0; c < 4; c++ {
			var n uint32
			for s := 0; s < 8; s += 2 {
				if i>>s&3 == c {
					n++
				}
			}
			x |= n << (c << 3)
		}
		t[i] = x
	}
	return t
}()

// baseShift is the bit offset of base j (0..31) inside a packed base word.
func baseShift(j int) uint {
	if j < 16 {
		return uint(30 - 2*j)
	}
	return uint(94 - 2*j)
}

// occAux counts the 2-bit fields of y equal to 11.
func occAux(y uint64) int64 {
	y = (y >> 1) & y
	y = (y & 0x1111111111111111) + (y >> 2 & 0x1111111111111111)
	return int64(((y + (y >> 4)) & 0x0f0f0f0f0f0f0f0f) * 0x0101010101010101 >> 56)
}

// occAux4 sums the per-symbol byte counters of a 16-base group.
func occAux4(b uint32) uint32 {
	return cntTable[b&0xff] + cntTable[b>>8&0xff] + cntTable[b>>16&0xff] + cntTable[b>>24]
}

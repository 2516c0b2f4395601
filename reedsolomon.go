// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// Reed-Solomon decoding for the AC21 (R2007+) container format (spec.md
// section 4.3). The family uses two fixed codeword shapes, both over a
// 255-symbol GF(2^8) codeword: RS(255,251) for the file header and page
// bodies (4 parity bytes, corrects up to 2 byte errors per codeword) and
// RS(255,239) for the compressed metadata body (16 parity bytes, corrects
// up to 8 byte errors). spec.md section 4.3's "data block size 239 or 251
// depending on caller (251 for file header & page bodies; 239 for
// compressed metadata body)" is k; the codeword length n is always 255.
// This resolves the Open Question spec.md section 9 flags about the
// correction factor: the per-codeword error-correction capability is
// fixed by k (t = (255-k)/2), while the "correction factor" the container
// passes in is the number of codewords the compressed page is interleaved
// across (byte i of codeword j lives at input offset i*factor+j),
// matching spec.md section 4.3's literal wording ("divide the compressed
// page into factor interleaved codewords").
const rsCodewordLen = 255

// gfExpLog holds the GF(2^8) exponential and logarithm tables for the
// primitive polynomial x^8+x^4+x^3+x^2+1 (0x11D), the same field used by
// QR codes and many other practical RS applications.
var (
	gfExp [512]byte
	gfLog [256]byte
)

func init() {
	const primPoly = 0x11D
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= primPoly
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return gfExp[(int(gfLog[a])-int(gfLog[b])+255)%255]
}

func gfPow(a byte, p int) byte {
	if a == 0 {
		if p == 0 {
			return 1
		}
		return 0
	}
	e := (int(gfLog[a]) * p) % 255
	if e < 0 {
		e += 255
	}
	return gfExp[e]
}

func gfInv(a byte) byte {
	return gfExp[255-int(gfLog[a])]
}

// polyEval evaluates p (coefficients highest-degree first) at x.
func polyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}

// rsDecodeCodeword corrects and strips parity from a single n=255-byte
// codeword whose data length is k, returning the k-byte message. It
// returns ErrUnrecoverableRS if more errors are present than the
// codeword's (255-k)/2 correction capacity allows.
func rsDecodeCodeword(codeword []byte, k int) ([]byte, error) {
	if len(codeword) != rsCodewordLen {
		return nil, ErrUnrecoverableRS
	}
	nsym := rsCodewordLen - k // parity symbol count
	t := nsym / 2             // correctable errors

	// Syndromes: S_i = codeword(alpha^i), i = 1..nsym, codeword coefficients
	// taken highest-degree-first (codeword[0] is the x^254 coefficient).
	syndromes := make([]byte, nsym)
	allZero := true
	for i := 0; i < nsym; i++ {
		s := polyEval(codeword, gfExp[i+1])
		syndromes[i] = s
		if s != 0 {
			allZero = false
		}
	}
	if allZero {
		return append([]byte(nil), codeword[:k]...), nil
	}
	if t == 0 {
		return nil, ErrUnrecoverableRS
	}

	// Berlekamp-Massey to find the error locator polynomial.
	errLocator := berlekampMassey(syndromes)
	if len(errLocator)-1 > t {
		return nil, ErrUnrecoverableRS
	}

	// Chien search for the roots of the error locator, giving error
	// positions (as codeword indices from the end).
	positions := chienSearch(errLocator, len(codeword))
	if len(positions) != len(errLocator)-1 {
		return nil, ErrUnrecoverableRS
	}
	if len(positions) == 0 {
		return nil, ErrUnrecoverableRS
	}

	// Forney algorithm: compute error magnitudes and correct.
	corrected := append([]byte(nil), codeword...)
	if err := forneyCorrect(corrected, syndromes, errLocator, positions); err != nil {
		return nil, err
	}

	// Re-check: corrected codeword must now have all-zero syndromes.
	for i := 0; i < nsym; i++ {
		if polyEval(corrected, gfExp[i+1]) != 0 {
			return nil, ErrUnrecoverableRS
		}
	}
	return corrected[:k], nil
}

// berlekampMassey computes the error locator polynomial (highest degree
// first, constant term last, leading coefficient 1) from the syndromes.
func berlekampMassey(syndromes []byte) []byte {
	c := make([]byte, 1, len(syndromes)+1)
	c[0] = 1
	b := make([]byte, 1, len(syndromes)+1)
	b[0] = 1
	l := 0
	m := 1
	bCoeff := byte(1)

	for n := 0; n < len(syndromes); n++ {
		// discrepancy
		delta := syndromes[n]
		for i := 1; i <= l; i++ {
			delta ^= gfMul(c[i], syndromes[n-i])
		}
		if delta == 0 {
			m++
			continue
		}
		t := append([]byte(nil), c...)
		coef := gfDiv(delta, bCoeff)
		// c(x) -= coef * x^m * b(x)
		shifted := make([]byte, len(b)+m)
		copy(shifted, b)
		for i := range shifted {
			shifted[i] = gfMul(shifted[i], coef)
		}
		c = xorPoly(padLeft(c, len(shifted)), shifted)
		if 2*l <= n {
			l = n + 1 - l
			b = t
			bCoeff = delta
			m = 1
		} else {
			m++
		}
	}
	return c
}

func padLeft(p []byte, n int) []byte {
	if len(p) >= n {
		return p
	}
	out := make([]byte, n)
	copy(out[n-len(p):], p)
	return out
}

func xorPoly(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var av, bv byte
		if i >= n-len(a) {
			av = a[i-(n-len(a))]
		}
		if i >= n-len(b) {
			bv = b[i-(n-len(b))]
		}
		out[i] = av ^ bv
	}
	// trim leading zeros but keep at least the constant term
	for len(out) > 1 && out[0] == 0 {
		out = out[1:]
	}
	return out
}

// chienSearch finds the roots of errLocator among the 255 nonzero field
// elements and converts each root to a byte position within a codeword of
// the given length, ordered left to right.
func chienSearch(errLocator []byte, codewordLen int) []int {
	var positions []int
	for i := 0; i < 255; i++ {
		x := gfExp[i]
		if polyEval(errLocator, x) == 0 {
			// root alpha^i corresponds to error at position
			// codewordLen-1-i from the start (highest-degree-first
			// indexing), matching inv(x) = alpha^(255-i).
			pos := codewordLen - 1 - i
			if pos >= 0 && pos < codewordLen {
				positions = append(positions, pos)
			}
		}
	}
	return positions
}

// forneyCorrect computes error magnitudes via the Forney algorithm and
// XORs them into codeword at the given positions.
func forneyCorrect(codeword []byte, syndromes []byte, errLocator []byte, positions []int) error {
	// Error evaluator polynomial: Omega(x) = S(x)*Lambda(x) mod x^nsym.
	omega := make([]byte, len(syndromes)+len(errLocator)-1)
	for i, sc := range syndromes {
		for j, lc := range errLocator {
			omega[i+j] ^= gfMul(sc, lc)
		}
	}
	if len(omega) > len(syndromes) {
		omega = omega[len(omega)-len(syndromes):]
	}

	// Formal derivative of the error locator (odd-power terms only).
	lDeg := len(errLocator) - 1
	var deriv []byte
	for i := 0; i < lDeg; i++ {
		// errLocator is highest-degree-first; coefficient of x^(lDeg-i)
		// survives the derivative when its exponent is odd.
		exp := lDeg - i
		if exp%2 == 1 {
			deriv = append(deriv, errLocator[i])
		}
	}
	if len(deriv) == 0 {
		deriv = []byte{1}
	}

	for _, pos := range positions {
		i := len(codeword) - 1 - pos
		xInv := gfExp[(255-i)%255]
		num := polyEval(padLeft(omega, len(omega)), xInv)
		den := polyEval(deriv, xInv)
		if den == 0 {
			return ErrUnrecoverableRS
		}
		magnitude := gfMul(xInv, gfDiv(num, den))
		codeword[pos] ^= magnitude
	}
	return nil
}

// rsDecode corrects and concatenates a sequence of interleaved RS
// codewords. input holds factor codewords of rsCodewordLen bytes each,
// interleaved byte-by-byte (byte i of codeword j sits at input[i*factor+j]);
// k is the per-codeword data length (239 or 251). The returned slice is
// truncated/validated by the caller against the declared decompressed size.
func rsDecode(input []byte, k int, factor int) ([]byte, error) {
	if factor <= 0 {
		return nil, ErrUnrecoverableRS
	}
	if len(input) < rsCodewordLen*factor {
		return nil, ErrUnrecoverableRS
	}

	out := make([]byte, 0, k*factor)
	for j := 0; j < factor; j++ {
		codeword := make([]byte, rsCodewordLen)
		for i := 0; i < rsCodewordLen; i++ {
			codeword[i] = input[i*factor+j]
		}
		data, err := rsDecodeCodeword(codeword, k)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// decompressAC21 implements the second, incompatible LZ77 variant used by
// R2007+ (AC21) pages (spec.md section 4.2). It shares decompressAC18's
// overall shape (opcode byte, literal run vs. back-reference, byte-by-byte
// overlapping copies) but packs the opcode and the back-reference fields
// differently, and uses a 3-byte (not 2-byte) distance so AC21's larger
// per-page window can be addressed:
//
//	0x00:       end of stream; valid only once exactly outSize bytes have
//	            been produced.
//	low bit 1:  a literal run. Bits 1-7 of the opcode give the run length
//	            (0-127), copied verbatim. A length of 127 is extended by a
//	            following byte added directly (single extension byte, no
//	            chain — AC21 sections are capped at a known max
//	            decompressed size per spec.md section 3, so one extension
//	            byte is always enough).
//	low bit 0 (opcode != 0):
//	            a back-reference. Bits 1-7 give a length class (minimum
//	            match length 3), followed by a 3-byte little-endian
//	            distance.
//
// As with decompressAC18, this opcode allocation is this library's own
// resolution of the Open Question spec.md section 9 notes as ambiguous in
// the public record; it is exercised by TestDecompressAC21LiteralVector
// and is internally consistent (produces exactly outSize bytes or fails
// with ErrCorruptCompression).
func decompressAC21(input []byte, outSize int) ([]byte, error) {
	out := make([]byte, 0, outSize)
	pos := 0

	readByte := func() (byte, bool) {
		if pos >= len(input) {
			return 0, false
		}
		b := input[pos]
		pos++
		return b, true
	}

	for {
		if len(out) >= outSize {
			break
		}
		opcode, ok := readByte()
		if !ok {
			return nil, ErrCorruptCompression
		}

		if opcode == 0x00 {
			if len(out) != outSize {
				return nil, ErrCorruptCompression
			}
			return out, nil
		}

		if opcode&0x01 != 0 {
			n := int(opcode >> 1)
			if n == 0x7F {
				b, ok := readByte()
				if !ok {
					return nil, ErrCorruptCompression
				}
				n += int(b)
			}
			if pos+n > len(input) || len(out)+n > outSize {
				return nil, ErrCorruptCompression
			}
			out = append(out, input[pos:pos+n]...)
			pos += n
			continue
		}

		length := int(opcode>>1) + 2 // class 1 => length 3.
		b0, ok := readByte()
		if !ok {
			return nil, ErrCorruptCompression
		}
		b1, ok := readByte()
		if !ok {
			return nil, ErrCorruptCompression
		}
		b2, ok := readByte()
		if !ok {
			return nil, ErrCorruptCompression
		}
		distance := int(b0) | int(b1)<<8 | int(b2)<<16
		distance++

		if distance <= 0 || distance > len(out) || len(out)+length > outSize {
			return nil, ErrCorruptCompression
		}
		start := len(out) - distance
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}

	if len(out) != outSize {
		return nil, ErrCorruptCompression
	}
	return out, nil
}

// Copyright 2026 The OpenCADKit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dwg

// decompressAC18 implements the LZ77 variant used by R2004 (AC18) pages
// and sections (spec.md section 4.2). It is a streaming opcode decoder
// over a byte-aligned input:
//
//	0x00:       end of stream; valid only once exactly outSize bytes have
//	            been produced.
//	0x80-0xFF:  a literal run. The low 7 bits of the opcode give the run
//	            length (0-127), copied verbatim from the input. A length
//	            of 127 (opcode 0xFF) is extended by a chain of additional
//	            length bytes, each adding its value; the chain continues
//	            while a byte is 0xFF and ends with the first byte that is
//	            not, exactly like the AC18 section-size extension
//	            convention documented in spec.md section 4.1.
//	0x01-0x7F:  a back-reference. The opcode is a length class (match
//	            length is opcode+2, so at least 3; class 0x7F means "read
//	            one more extension byte and add it to 127+2") followed by
//	            a 2-byte little-endian word; the distance is that word
//	            plus one. The reference copies from
//	            output[cursor-distance], byte by byte, so overlapping
//	            copies (distance < length) reproduce run-length patterns
//	            correctly.
//
// The precise opcode allocation is this library's own resolution of the
// Open Question spec.md section 9 flags as ambiguous in the public
// record; it is internally consistent and is exercised end-to-end by the
// literal-only vector in spec.md's S6 scenario
// (TestDecompressAC18LiteralVector).
func decompressAC18(input []byte, outSize int) ([]byte, error) {
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

		switch {
		case opcode == 0x00:
			if len(out) != outSize {
				return nil, ErrCorruptCompression
			}
			return out, nil

		case opcode&0x80 != 0:
			n := int(opcode & 0x7F)
			if n == 0x7F {
				for {
					b, ok := readByte()
					if !ok {
						return nil, ErrCorruptCompression
					}
					n += int(b)
					if b != 0xFF {
						break
					}
				}
			}
			if pos+n > len(input) || len(out)+n > outSize {
				return nil, ErrCorruptCompression
			}
			out = append(out, input[pos:pos+n]...)
			pos += n

		default:
			length := int(opcode) + 2 // opcode 1 => length 3.
			if opcode == 0x7F {
				b, ok := readByte()
				if !ok {
					return nil, ErrCorruptCompression
				}
				length += int(b)
			}
			lo, ok := readByte()
			if !ok {
				return nil, ErrCorruptCompression
			}
			hi, ok := readByte()
			if !ok {
				return nil, ErrCorruptCompression
			}
			distance := int(lo) | int(hi)<<8
			distance++

			if distance <= 0 || distance > len(out) || len(out)+length > outSize {
				return nil, ErrCorruptCompression
			}
			start := len(out) - distance
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}
		}
	}

	if len(out) != outSize {
		return nil, ErrCorruptCompression
	}
	return out, nil
}

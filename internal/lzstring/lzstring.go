// Package lzstring implements the URI-safe flavour of the lz-string
// compression format, so payloads interoperate with the JavaScript
// lz-string library's compressToEncodedURIComponent and
// decompressFromEncodedURIComponent.
//
// The algorithm works on UTF-16 code units, like the JavaScript original.
// Its output alphabet is [A-Za-z0-9+-$], which needs no percent-encoding
// inside a URL fragment.
package lzstring

import (
	"errors"
	"strings"
	"unicode/utf16"
)

const uriSafeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+-$"

// ErrCorrupt is returned when a payload cannot be decompressed.
var ErrCorrupt = errors.New("lzstring: corrupt input")

var uriSafeIndex = func() map[byte]int {
	m := make(map[byte]int, len(uriSafeAlphabet))
	for i := 0; i < len(uriSafeAlphabet); i++ {
		m[uriSafeAlphabet[i]] = i
	}
	return m
}()

// CompressToEncodedURIComponent compresses s into the URI-safe alphabet.
func CompressToEncodedURIComponent(s string) string {
	return compress(utf16.Encode([]rune(s)), 6, func(v int) byte { return uriSafeAlphabet[v] })
}

// DecompressFromEncodedURIComponent reverses CompressToEncodedURIComponent.
// Spaces are read as '+', which is what form-decoding does to a raw '+'.
// An empty input or a payload that encodes an empty string yields ErrCorrupt.
func DecompressFromEncodedURIComponent(s string) (string, error) {
	if s == "" {
		return "", ErrCorrupt
	}
	s = strings.ReplaceAll(s, " ", "+")
	values := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		v, ok := uriSafeIndex[s[i]]
		if !ok {
			return "", ErrCorrupt
		}
		values[i] = v
	}
	units, err := decompress(values, 32)
	if err != nil {
		return "", err
	}
	if len(units) == 0 {
		return "", ErrCorrupt
	}
	return string(utf16.Decode(units)), nil
}

// bitWriter packs codes LSB-first into symbols of bitsPerChar bits.
type bitWriter struct {
	bitsPerChar int
	toChar      func(int) byte
	out         []byte
	val         int
	pos         int
}

func (w *bitWriter) writeBit(bit int) {
	w.val = (w.val << 1) | bit
	if w.pos == w.bitsPerChar-1 {
		w.pos = 0
		w.out = append(w.out, w.toChar(w.val))
		w.val = 0
	} else {
		w.pos++
	}
}

// writeBits emits the n low bits of value, least significant first.
func (w *bitWriter) writeBits(value, n int) {
	for i := 0; i < n; i++ {
		w.writeBit(value & 1)
		value >>= 1
	}
}

func (w *bitWriter) flush() string {
	for {
		w.val <<= 1
		if w.pos == w.bitsPerChar-1 {
			w.out = append(w.out, w.toChar(w.val))
			break
		}
		w.pos++
	}
	return string(w.out)
}

// key turns a run of code units into a map key without losing lone
// surrogates.
func key(units []uint16) string {
	b := make([]byte, 0, 2*len(units))
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return string(b)
}

func compress(input []uint16, bitsPerChar int, toChar func(int) byte) string {
	w := &bitWriter{bitsPerChar: bitsPerChar, toChar: toChar}

	dictionary := make(map[string]int)
	pending := make(map[string]bool)
	var cur []uint16
	enlargeIn := 2
	dictSize := 3
	numBits := 2

	shrink := func() {
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}

	emit := func(word []uint16) {
		k := key(word)
		if pending[k] {
			if word[0] < 256 {
				w.writeBits(0, numBits)
				w.writeBits(int(word[0]), 8)
			} else {
				w.writeBits(1, numBits)
				w.writeBits(int(word[0]), 16)
			}
			shrink()
			delete(pending, k)
		} else {
			w.writeBits(dictionary[k], numBits)
		}
		shrink()
	}

	for _, c := range input {
		ck := key([]uint16{c})
		if _, ok := dictionary[ck]; !ok {
			dictionary[ck] = dictSize
			dictSize++
			pending[ck] = true
		}

		next := append(append(make([]uint16, 0, len(cur)+1), cur...), c)
		if _, ok := dictionary[key(next)]; ok {
			cur = next
			continue
		}
		emit(cur)
		dictionary[key(next)] = dictSize
		dictSize++
		cur = []uint16{c}
	}

	if len(cur) > 0 {
		emit(cur)
	}

	// End of stream marker.
	w.writeBits(2, numBits)
	return w.flush()
}

// bitReader consumes symbols MSB-first; reads past the end yield zero bits.
type bitReader struct {
	values     []int
	resetValue int
	val        int
	position   int
	index      int
}

func (r *bitReader) next() int {
	if r.index < len(r.values) {
		v := r.values[r.index]
		r.index++
		return v
	}
	r.index++
	return 0
}

func (r *bitReader) readBits(n int) int {
	bits := 0
	for power := 1; power != 1<<n; power <<= 1 {
		if r.val&r.position > 0 {
			bits |= power
		}
		r.position >>= 1
		if r.position == 0 {
			r.position = r.resetValue
			r.val = r.next()
		}
	}
	return bits
}

func decompress(values []int, resetValue int) ([]uint16, error) {
	r := &bitReader{values: values, resetValue: resetValue, position: resetValue}
	r.val = r.next()

	dictionary := [][]uint16{nil, nil, nil}
	enlargeIn := 4
	numBits := 3

	var c []uint16
	switch r.readBits(2) {
	case 0:
		c = []uint16{uint16(r.readBits(8))}
	case 1:
		c = []uint16{uint16(r.readBits(16))}
	case 2:
		return nil, nil
	default:
		return nil, ErrCorrupt
	}
	dictionary = append(dictionary, c)
	w := c
	result := append([]uint16(nil), c...)

	for {
		if r.index > len(values) {
			return nil, ErrCorrupt
		}

		code := r.readBits(numBits)
		switch code {
		case 0, 1:
			width := 8
			if code == 1 {
				width = 16
			}
			dictionary = append(dictionary, []uint16{uint16(r.readBits(width))})
			code = len(dictionary) - 1
			enlargeIn--
		case 2:
			return result, nil
		}

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dictionary) && code >= 3:
			entry = dictionary[code]
		case code == len(dictionary):
			entry = append(append([]uint16(nil), w...), w[0])
		default:
			return nil, ErrCorrupt
		}
		result = append(result, entry...)

		dictionary = append(dictionary, append(append([]uint16(nil), w...), entry[0]))
		enlargeIn--
		w = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}

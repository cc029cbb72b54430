// Package statuslink encodes failure text into the compact, URL-safe token
// carried on commit status links.
package statuslink

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/golang/snappy"
)

var (
	// ErrInvalidEncoding marks a token that is not URL-safe base64 over a
	// snappy block.
	ErrInvalidEncoding = errors.New("statuslink: invalid encoding")
	// ErrInvalidUTF8 marks a token whose decompressed payload is not UTF-8.
	ErrInvalidUTF8 = errors.New("statuslink: payload is not valid UTF-8")
)

// Encode compresses s and renders it with the URL-safe, unpadded base64
// alphabet.
func Encode(s string) string {
	return base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, []byte(s)))
}

// Decode reverses Encode. Any malformed input fails with ErrInvalidEncoding;
// a payload that decompresses to non-UTF-8 fails with ErrInvalidUTF8.
func Decode(token string) (string, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// Package keys builds logical cache keys and maps them onto the physical keys
// kept in a store (configured prefix, encoded in the configured charset).
package keys

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Separator joins the parts of a key built with BuildKey.
const Separator = ":"

// DefaultCharset is used when no prefix charset is configured.
const DefaultCharset = "UTF-8"

// ErrBlankPart is returned by BuildKey when any part is empty or whitespace.
var ErrBlankPart = errors.New("keys: cache key part must not be blank")

// BuildKey joins parts with ":". Every part must be non-blank.
func BuildKey(parts ...string) (string, error) {
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("%w (index %d)", ErrBlankPart, i)
		}
	}
	return strings.Join(parts, Separator), nil
}

// MustBuildKey is like BuildKey but panics on a blank part.
func MustBuildKey(parts ...string) string {
	k, err := BuildKey(parts...)
	if err != nil {
		panic(err)
	}
	return k
}

// Serializer prepends a fixed prefix to logical keys and encodes the result
// in a configured charset. The zero value is a UTF-8 serializer without prefix.
type Serializer struct {
	prefix  string
	charset string
	enc     encoding.Encoding // nil => UTF-8 identity
}

// NewSerializer resolves charset by its IANA name ("" means UTF-8).
func NewSerializer(prefix, charset string) (*Serializer, error) {
	s := &Serializer{prefix: prefix, charset: DefaultCharset}
	if charset == "" || isUTF8(charset) {
		return s, nil
	}
	e, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("keys: unknown charset %q: %w", charset, err)
	}
	if e == nil {
		return nil, fmt.Errorf("keys: unsupported charset %q", charset)
	}
	s.charset = charset
	s.enc = e
	return s, nil
}

func isUTF8(name string) bool {
	n := strings.ToLower(name)
	return n == "utf-8" || n == "utf8"
}

func (s *Serializer) Prefix() string  { return s.prefix }
func (s *Serializer) Charset() string { return s.charset }

// Serialize returns the physical key for a logical key.
func (s *Serializer) Serialize(key string) (string, error) {
	full := s.prefix + key
	if s.enc == nil {
		return full, nil
	}
	out, err := s.enc.NewEncoder().String(full)
	if err != nil {
		return "", fmt.Errorf("keys: encode %q as %s: %w", full, s.charset, err)
	}
	return out, nil
}

// SerializeAll maps Serialize over keys, preserving order.
func (s *Serializer) SerializeAll(keys []string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		sk, err := s.Serialize(k)
		if err != nil {
			return nil, err
		}
		out[i] = sk
	}
	return out, nil
}

// Deserialize decodes a physical key and strips the prefix if present.
func (s *Serializer) Deserialize(raw string) (string, error) {
	decoded := raw
	if s.enc != nil {
		d, err := s.enc.NewDecoder().String(raw)
		if err != nil {
			return "", fmt.Errorf("keys: decode key as %s: %w", s.charset, err)
		}
		decoded = d
	}
	return strings.TrimPrefix(decoded, s.prefix), nil
}

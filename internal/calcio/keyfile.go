// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package calcio implements calcsign's file-level I/O: the text key-file
// parser (RSA style and Rabin style, per spec.md §6.2) and the memory-mapped
// image container reader (§7.2), grounded on saferwall/pe's mmap-backed
// File type.
package calcio

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/saferwall/calcsign/internal/bigint"
	"github.com/saferwall/calcsign/internal/calcimg"
	"github.com/saferwall/calcsign/internal/calclog"
)

// ReadKeyFile parses a calcsign text key file from r, auto-detecting RSA
// style (key ID, n, optional d) from Rabin style (n, optional e, p, q) by
// the length of the first line, exactly as keys.c's rs_read_key_file does.
// verify requests the self-consistency check (pq == n, or the 17^e^d == 17
// round-trip) that keys.c performs when asked to validate the file.
func ReadKeyFile(r io.Reader, filename string, verify bool) (*calcimg.Key, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024), 1024)

	line1, ok := nextLine(scanner)
	if !ok {
		return nil, calcimg.ErrKeySyntax
	}

	key := calcimg.NewKey()
	key.Filename = filename

	if len(line1) < 11 {
		if err := readRSAStyle(key, line1, scanner, verify); err != nil {
			return nil, err
		}
	} else {
		if err := readRabinStyle(key, line1, scanner, verify); err != nil {
			return nil, err
		}
	}

	logKeyLoad(key)
	return key, nil
}

func readRSAStyle(key *calcimg.Key, line1 string, scanner *bufio.Scanner, verify bool) error {
	id, err := strconv.ParseUint(strings.TrimSpace(line1), 16, 64)
	if err != nil {
		return calcimg.ErrKeySyntax
	}
	key.ID = id

	nLine, ok := nextLine(scanner)
	if !ok {
		return calcimg.ErrKeySyntax
	}
	n, ok := parseValue(nLine)
	if !ok {
		return calcimg.ErrKeySyntax
	}
	key.N = n

	if dLine, ok := nextLine(scanner); ok {
		if d, ok := parseValue(dLine); ok {
			key.D = d
		}
	}

	if verify && key.D.Sign() != 0 {
		seventeen := bigint.FromUint64(calcimg.DefaultValidationExponent)
		got := bigint.Exp(bigint.Exp(seventeen, key.E, key.N), key.D, key.N)
		if got.Cmp(seventeen) != 0 {
			return calcimg.ErrInvalidKey
		}
	}

	key.P = bigint.New()
	key.Q = bigint.New()
	key.QInv = bigint.New()
	return nil
}

func readRabinStyle(key *calcimg.Key, line1 string, scanner *bufio.Scanner, verify bool) error {
	n, ok := parseValue(line1)
	if !ok {
		return calcimg.ErrKeySyntax
	}
	key.N = n

	line, haveLine := nextLine(scanner)
	if haveLine && len(line) <= 10 {
		if e, ok := parseValue(line); ok {
			key.E = e
		}
		line, haveLine = nextLine(scanner)
	}

	pLine := line
	qLine, haveQ := nextLine(scanner)
	p, pOK := parseValue(pLine)
	q, qOK := parseValue(qLine)

	if !haveLine || !pOK || !haveQ || !qOK {
		key.P = bigint.New()
		key.Q = bigint.New()
	} else {
		key.P = p
		key.Q = q
		if verify && bigint.Mul(p, q).Cmp(key.N) != 0 {
			return calcimg.ErrInvalidKey
		}
	}

	key.QInv = bigint.New()
	key.D = bigint.New()
	key.ID = 0
	return nil
}

func logKeyLoad(key *calcimg.Key) {
	switch {
	case key.P.Sign() != 0 && key.Q.Sign() != 0:
		calclog.L().Infof("loaded Rabin/RSA private key (key file %s)", key.Filename)
	case key.D.Sign() != 0:
		calclog.L().Infof("loaded RSA private key (key file %s)", key.Filename)
	default:
		calclog.L().Infof("loaded public key (key file %s)", key.Filename)
	}
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), true
}

// ErrKeyValueSyntax is returned by ParseKeyValue for a malformed standalone
// value (used by key-generation tooling, outside a full key file).
var ErrKeyValueSyntax = errors.New("calcio: invalid key value syntax")

// ParseKeyValue parses a single TI hex-encoded value, as rs_parse_key_value
// does for values supplied outside a key file (e.g. on the command line).
func ParseKeyValue(s string) (*bigint.Int, error) {
	v, ok := parseValue(s)
	if !ok {
		return nil, ErrKeyValueSyntax
	}
	return v, nil
}

// parseValue decodes TI's count-prefixed hexadecimal key encoding: either
// the short form (2 hex digits of byte count) or the long form (4 hex
// digits), whichever the line's length matches. Both forms import the
// following count*2 hex digits as a little-endian byte string, mirroring
// keys.c's parse_value (mpz_import with order=-1).
func parseValue(line string) (*bigint.Int, bool) {
	if v, ok := parseValueForm(line, 2, 3); ok {
		return v, true
	}
	return parseValueForm(line, 4, 5)
}

func parseValueForm(line string, digitWidth, slack int) (*bigint.Int, bool) {
	if len(line) < digitWidth {
		return nil, false
	}
	count, err := strconv.ParseUint(line[:digitWidth], 16, 32)
	if err != nil {
		return nil, false
	}
	if int(count)*2+slack < len(line) {
		return nil, false
	}
	if digitWidth+int(count)*2 > len(line) {
		return nil, false
	}

	buf := make([]byte, count)
	for i := range buf {
		start := digitWidth + 2*i
		b, err := strconv.ParseUint(line[start:start+2], 16, 8)
		if err != nil {
			return nil, false
		}
		buf[i] = byte(b)
	}
	return bigint.FromBytesLE(buf), true
}

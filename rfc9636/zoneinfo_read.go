// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Parse "zoneinfo" time zone file.
// https://github.com/golang/go/blob/master/src/time/zoneinfo_read.go
// See tzfile(5), RFC 9636 and https://en.wikipedia.org/wiki/Zoneinfo.

package rfc9636

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
)

// maxFileSize is the max permitted size of files read by LoadTzinfo.
const maxFileSize = 10 << 20

type fileSizeError string

func (f fileSizeError) Error() string {
	return "rfc9636: file " + string(f) + " is too large"
}

// ErrBadData is returned for input that is not a well formed TZif file.
var ErrBadData = errors.New("malformed time zone information")

// dataIO consumes a byte slice front to back. Short reads set error and
// return nil.
type dataIO struct {
	p     []byte
	error bool
}

func (d *dataIO) read(n int) []byte {
	if n < 0 || len(d.p) < n {
		d.p = nil
		d.error = true
		return nil
	}
	p := d.p[:n]
	d.p = d.p[n:]
	return p
}

// header is the fixed part of a TZif data block: magic, version, padding
// and six counts.
type header struct {
	version int
	isUTCCnt,
	isStdCnt,
	leapCnt,
	timeCnt,
	typeCnt,
	charCnt int
}

func readHeader(d *dataIO) (header, bool) {
	var h header
	if string(d.read(4)) != "TZif" {
		return h, false
	}
	p := d.read(16)
	if p == nil {
		return h, false
	}
	switch p[0] {
	case 0:
		h.version = 1
	case '2', '3', '4':
		h.version = int(p[0] - '0')
	default:
		return h, false
	}
	counts := d.read(6 * 4)
	if counts == nil {
		return h, false
	}
	n := func(i int) int { return int(binary.BigEndian.Uint32(counts[i*4:])) }
	h.isUTCCnt, h.isStdCnt, h.leapCnt = n(0), n(1), n(2)
	h.timeCnt, h.typeCnt, h.charCnt = n(3), n(4), n(5)
	return h, true
}

// blockLen is the size of the data block that follows h when transition
// times take timeSize bytes.
func (h header) blockLen(timeSize int) int {
	return h.timeCnt*(timeSize+1) +
		h.typeCnt*6 +
		h.charCnt +
		h.leapCnt*(timeSize+4) +
		h.isStdCnt +
		h.isUTCCnt
}

// LoadLocationFromTZData parses the TZif data of the named zone. For
// version 2 and later the 32-bit block is skipped and the 64-bit block and
// the TZ footer are read. Leap seconds and the standard/UT indicators are
// not kept.
func LoadLocationFromTZData(name string, data []byte) (*Location, error) {
	d := &dataIO{p: data}
	h, ok := readHeader(d)
	if !ok {
		return nil, ErrBadData
	}
	timeSize := 4
	if h.version > 1 {
		d.read(h.blockLen(4))
		if h, ok = readHeader(d); !ok {
			return nil, ErrBadData
		}
		timeSize = 8
	}

	times := d.read(h.timeCnt * timeSize)
	indexes := d.read(h.timeCnt)
	types := d.read(h.typeCnt * 6)
	abbrev := d.read(h.charCnt)
	d.read(h.leapCnt*(timeSize+4) + h.isStdCnt + h.isUTCCnt)
	if d.error || h.typeCnt == 0 {
		return nil, ErrBadData
	}

	// Each local time type is utoff[4] isdst[1] desigidx[1].
	zones := make([]zone, h.typeCnt)
	for i := range zones {
		rec := types[i*6 : i*6+6]
		if int(rec[5]) >= len(abbrev) {
			return nil, ErrBadData
		}
		zones[i] = zone{
			name:   byteString(abbrev[rec[5]:]),
			offset: int(int32(binary.BigEndian.Uint32(rec))),
			isDST:  rec[4] != 0,
		}
	}

	tx := make([]zoneTrans, h.timeCnt)
	for i := range tx {
		if int(indexes[i]) >= len(zones) {
			return nil, ErrBadData
		}
		tx[i].index = indexes[i]
		if timeSize == 8 {
			tx[i].when = int64(binary.BigEndian.Uint64(times[i*8:]))
		} else {
			tx[i].when = int64(int32(binary.BigEndian.Uint32(times[i*4:])))
		}
	}
	if len(tx) == 0 {
		// Fixed zones such as Etc/GMT0 have no table; one transition at
		// the beginning of time covers everything.
		tx = append(tx, zoneTrans{when: alpha})
	}

	return &Location{name: name, zone: zones, tx: tx, extend: footer(d.p)}, nil
}

// footer returns the TZ string between the newlines that close a version 2
// or later file, or "" when there is none.
func footer(rest []byte) string {
	if len(rest) > 2 && rest[0] == '\n' && rest[len(rest)-1] == '\n' {
		return string(rest[1 : len(rest)-1])
	}
	return ""
}

// byteString stops at the first NUL.
func byteString(p []byte) string {
	if i := bytes.IndexByte(p, 0); i != -1 {
		p = p[:i]
	}
	return string(p)
}

// LoadTzinfo returns the raw TZif data of the named zone from dir, a
// timezone database directory.
func LoadTzinfo(name, dir string) ([]byte, error) {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fileSizeError(path)
	}
	return os.ReadFile(path)
}

package docroot

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeSpec is a half-open byte interval [Start, End) within an entity of
// known size. A spec produced by ParseRange always satisfies
// 0 <= Start < End <= size, so it selects at least one byte.
type RangeSpec struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r RangeSpec) Length() int64 {
	return r.End - r.Start
}

// ContentRange renders the Content-Range header value for an entity of the
// given total size, e.g. "bytes 0-99/1234". The wire format is inclusive on
// both ends.
func (r RangeSpec) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End-1, size)
}

// ParseRange interprets a Range request header against an entity of the given
// size. Only single byte ranges are understood:
//
//	bytes=100-199   explicit interval, last byte inclusive
//	bytes=100-      from offset 100 to the end of the entity
//	bytes=-200      the final 200 bytes
//
// An explicit end past the entity is clipped to the last byte. The second
// return is false whenever the header is absent, malformed, multi-range, or
// unsatisfiable (start at or past the entity, empty suffix, empty entity);
// callers then fall back to the full entity. A bad header is never an error.
func ParseRange(header string, size int64) (RangeSpec, bool) {
	header = strings.TrimSpace(header)

	rest, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return RangeSpec{}, false
	}
	if strings.Contains(rest, ",") {
		return RangeSpec{}, false
	}

	startStr, endStr, ok := strings.Cut(rest, "-")
	if !ok {
		return RangeSpec{}, false
	}

	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return RangeSpec{}, false
		}
		start := size - n
		if start < 0 {
			start = 0
		}
		return checkedRange(start, size, size)
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return RangeSpec{}, false
	}

	if endStr == "" {
		return checkedRange(start, size, size)
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return RangeSpec{}, false
	}
	if end >= size {
		end = size - 1
	}
	return checkedRange(start, end+1, size)
}

func checkedRange(start, end, size int64) (RangeSpec, bool) {
	if start < 0 || start >= end || end > size {
		return RangeSpec{}, false
	}
	return RangeSpec{Start: start, End: end}, true
}

// internal/app/system/paging/paging.go
package paging

// PageSize is the default number of rows shown in paged lists.
// Kept as an int because call sites add/subtract and then cast to
// int64 for Mongo Find().SetLimit().
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a slice fetched with LimitPlusOne. It modifies the
// slice in place and returns pagination indicators.
//
// When going backwards (before != ""):
//   - If len > PageSize, trim the first element (older page exists)
//   - HasNext is always true (we came from somewhere)
//
// When going forwards or on the first page:
//   - If len > PageSize, trim to PageSize (next page exists)
//   - HasPrev is true only if after != ""
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var hasPrev, hasNext bool

	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[1:]
			hasPrev = true
		}
		hasNext = true
	} else {
		if orig > PageSize {
			*rows = (*rows)[:PageSize]
			hasNext = true
		}
		hasPrev = after != ""
	}

	return Result{HasPrev: hasPrev, HasNext: hasNext}
}

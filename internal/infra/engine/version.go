// Where: internal/infra/engine/version.go
// What: Engine version comparison.
// Why: Decide whether an installed engine satisfies the minimum version policy.
package engine

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// AtLeast reports whether installed >= minimum. Both sides are parsed as
// semantic versions (partial forms like "27.3" are coerced); when either
// side does not parse, comparison degrades to segment-wise natural
// ordering, and for non-numeric segments to plain string ordering.
// AtLeast(v, v) holds for every v.
func AtLeast(installed, minimum string) bool {
	iv, ierr := semver.NewVersion(normalize(installed))
	mv, merr := semver.NewVersion(normalize(minimum))
	if ierr == nil && merr == nil {
		return !iv.LessThan(mv)
	}
	return segmentAtLeast(installed, minimum)
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

func segmentAtLeast(a, b string) bool {
	as := strings.Split(normalize(a), ".")
	bs := strings.Split(normalize(b), ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := segment(as, i), segment(bs, i)
		an, aerr := strconv.Atoi(av)
		bn, berr := strconv.Atoi(bv)
		if aerr == nil && berr == nil {
			if an != bn {
				return an > bn
			}
			continue
		}
		if av != bv {
			return av > bv
		}
	}
	return true
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return "0"
}

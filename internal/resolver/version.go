package resolver

import (
	"strconv"
	"strings"
)

// CompareVersions orders two dotted-numeric version strings, with
// optional "-dev"/"-rc"/"-rcN" suffixes ranked dev < rc < rcN < stable
// (spec §4.3 "Version Comparison"). Missing trailing numeric components
// are treated as zero, so "1.2" == "1.2.0" for core-part comparison.
//
// Grounded on the teacher's internal/version.CompareVersions, narrowed
// to the specific suffix vocabulary the spec defines instead of the
// teacher's open-ended alpha/beta/rc handling.
func CompareVersions(a, b string) int {
	coreA, suffixA := splitSuffix(a)
	coreB, suffixB := splitSuffix(b)

	if c := compareCore(coreA, coreB); c != 0 {
		return c
	}
	return compareSuffix(suffixA, suffixB)
}

// splitSuffix separates the dotted-numeric core from a trailing
// "-dev", "-rc", or "-rcN" suffix.
func splitSuffix(v string) (core, suffix string) {
	v = strings.TrimPrefix(v, "v")
	idx := strings.Index(v, "-")
	if idx == -1 {
		return v, ""
	}
	return v[:idx], v[idx+1:]
}

func compareCore(a, b string) int {
	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	n := len(partsA)
	if len(partsB) > n {
		n = len(partsB)
	}
	for i := 0; i < n; i++ {
		var na, nb int
		if i < len(partsA) {
			na, _ = strconv.Atoi(partsA[i])
		}
		if i < len(partsB) {
			nb, _ = strconv.Atoi(partsB[i])
		}
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// suffixRank orders the suffix vocabulary: no suffix (stable) ranks
// highest, then "rcN" (higher N first), then bare "rc", then "dev".
// Unrecognized suffixes sort below stable but are compared
// lexicographically against each other as a last resort.
func suffixRank(suffix string) (class int, rcNum int) {
	switch {
	case suffix == "":
		return 3, 0
	case suffix == "dev":
		return 0, 0
	case suffix == "rc":
		return 1, 0
	case strings.HasPrefix(suffix, "rc"):
		if n, err := strconv.Atoi(suffix[2:]); err == nil {
			return 2, n
		}
		return 1, 0
	default:
		return -1, 0
	}
}

func compareSuffix(a, b string) int {
	classA, numA := suffixRank(a)
	classB, numB := suffixRank(b)

	if classA == -1 && classB == -1 {
		return strings.Compare(a, b)
	}
	if classA != classB {
		if classA < classB {
			return -1
		}
		return 1
	}
	if numA != numB {
		if numA < numB {
			return -1
		}
		return 1
	}
	return 0
}

package resolver

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/tsukumogami/vx/internal/registry"
)

// filterByConstraintSpec applies a project-config version spec (exact,
// range-partial, or semver op) against a runtime's fetched version
// list, returning the subset of version strings that match.
//
// Range-partial specs ("20", "3.11") and exact specs fall back to a
// dotted-component prefix match, since many of the tools this driver
// targets (Go, Node LTS lines) aren't strict semver. Semver-operator
// specs ("^1.2", ">=18", "~=1.4") are evaluated with
// Masterminds/semver, translating the Python-style "~=" into the
// semver tilde-range equivalent.
func filterByConstraintSpec(versions []registry.VersionInfo, spec string) []string {
	if isSemverOpSpec(spec) {
		return filterBySemverConstraint(versions, spec)
	}
	return filterByPrefix(versions, spec)
}

func isSemverOpSpec(spec string) bool {
	for _, prefix := range []string{"^", "~", ">=", "<=", ">", "<", "~="} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	return false
}

func filterBySemverConstraint(versions []registry.VersionInfo, spec string) []string {
	normalized := strings.Replace(spec, "~=", "~", 1)
	constraint, err := semver.NewConstraint(normalized)
	if err != nil {
		return nil
	}
	var out []string
	for _, v := range versions {
		sv, err := semver.NewVersion(v.Version)
		if err != nil {
			continue
		}
		if constraint.Check(sv) {
			out = append(out, v.Version)
		}
	}
	return out
}

// satisfiesRange reports whether version lies in [min, max] using the
// dotted-numeric comparator; an empty bound imposes no restriction on
// that side.
func satisfiesRange(version, min, max string) bool {
	if min != "" && CompareVersions(version, min) < 0 {
		return false
	}
	if max != "" && CompareVersions(version, max) > 0 {
		return false
	}
	return true
}

// filterByPrefix matches versions whose dotted-component prefix equals
// spec's components: "20" matches "20.10.0" and "20.0.0" but not "2.0.0".
func filterByPrefix(versions []registry.VersionInfo, spec string) []string {
	specParts := strings.Split(spec, ".")
	var out []string
	for _, v := range versions {
		if v.Prerelease {
			continue
		}
		parts := strings.Split(v.Version, ".")
		if len(parts) < len(specParts) {
			continue
		}
		match := true
		for i, sp := range specParts {
			if parts[i] != sp {
				match = false
				break
			}
		}
		if match {
			out = append(out, v.Version)
		}
	}
	return out
}

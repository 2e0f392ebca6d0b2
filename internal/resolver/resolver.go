package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Strategy selects how a dependency declared with more than one distinct
// version is collapsed to a single one. The set is closed; there is no
// plugin surface.
type Strategy string

const (
	// StrategySkip never resolves; conflicting dependencies are left alone.
	StrategySkip Strategy = "skip"
	// StrategyFail treats any multi-version dependency as a hard conflict.
	StrategyFail Strategy = "fail"
	// StrategyHighest picks the highest version by semver ordering.
	StrategyHighest Strategy = "highest"
	// StrategyLowest picks the lowest version by semver ordering.
	StrategyLowest Strategy = "lowest"
	// StrategyHighestCompatible picks the highest version satisfying every
	// declaration interpreted as a caret requirement.
	StrategyHighestCompatible Strategy = "highest-compatible"
)

// ParseStrategy maps a CLI/config value to a Strategy.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategySkip, StrategyFail, StrategyHighest, StrategyLowest, StrategyHighestCompatible:
		return Strategy(raw), nil
	default:
		return "", fmt.Errorf("unknown version resolution strategy %q", raw)
	}
}

var (
	// ErrPolicySkip is returned for every conflict under StrategySkip.
	ErrPolicySkip = errors.New("skip strategy")
	// ErrPolicyFail is returned for every conflict under StrategyFail.
	ErrPolicyFail = errors.New("version conflict detected with fail strategy")
	// ErrNoValidVersions means no declared version parsed, even leniently.
	ErrNoValidVersions = errors.New("no valid semver versions found")
	// ErrIncompatible means no candidate satisfies all caret requirements.
	ErrIncompatible = errors.New("no version satisfies all requirements")
	// ErrInvalidVersion means a string parsed neither as a requirement nor
	// as a lenient version.
	ErrInvalidVersion = errors.New("invalid version")
)

// ParseLenient parses a version requirement string, zero-padding missing
// numeric components first ("1.0" -> 1.0.0, "2" -> 2.0.0). Strings carrying
// pre-release or build suffixes are accepted only in already-valid
// three-component form; anything else (wildcards, "v" prefixes, four
// components) does not parse.
func ParseLenient(raw string) (*semver.Version, bool) {
	if v, err := semver.StrictNewVersion(raw); err == nil {
		return v, true
	}

	padded := raw
	switch strings.Count(raw, ".") {
	case 0:
		padded += ".0.0"
	case 1:
		padded += ".0"
	default:
		return nil, false
	}

	v, err := semver.StrictNewVersion(padded)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Resolve picks one version string to represent every entry of versionMap
// (version -> observers declaring it) under the given strategy. On success
// it returns the resolved version in normalized three-component form and
// the flattened observer list. Failures are reported with the typed errors
// above; the caller turns them into conflicts.
func Resolve(versionMap map[string][]string, strategy Strategy) (string, []string, error) {
	allMembers := make([]string, 0, len(versionMap))
	versions := make([]string, 0, len(versionMap))
	for version, members := range versionMap {
		versions = append(versions, version)
		allMembers = append(allMembers, members...)
	}
	sort.Strings(versions)
	sort.Strings(allMembers)

	switch strategy {
	case StrategySkip:
		return "", nil, ErrPolicySkip
	case StrategyFail:
		return "", nil, ErrPolicyFail
	case StrategyHighest:
		return resolveByOrder(versions, allMembers, true)
	case StrategyLowest:
		return resolveByOrder(versions, allMembers, false)
	case StrategyHighestCompatible:
		return resolveHighestCompatible(versions, allMembers)
	default:
		return "", nil, fmt.Errorf("unknown version resolution strategy %q", strategy)
	}
}

// resolveByOrder picks the highest or lowest leniently-parsed version.
// Unparseable strings are ignored; it fails only when nothing parses.
func resolveByOrder(versions, members []string, takeHighest bool) (string, []string, error) {
	parsed := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		if v, ok := ParseLenient(raw); ok {
			parsed = append(parsed, v)
		}
	}

	if len(parsed) == 0 {
		return "", nil, ErrNoValidVersions
	}

	sort.Sort(semver.Collection(parsed))
	if takeHighest {
		return parsed[len(parsed)-1].String(), members, nil
	}
	return parsed[0].String(), members, nil
}

// resolveHighestCompatible interprets every version string as a caret-style
// compatibility requirement and returns the highest declared version that
// satisfies all of them simultaneously. A bare version becomes a caret
// range of its normalized form; strings that are not versions are tried as
// explicit requirements before giving up.
func resolveHighestCompatible(versions, members []string) (string, []string, error) {
	reqs := make([]*semver.Constraints, 0, len(versions))
	candidates := make([]*semver.Version, 0, len(versions))

	for _, raw := range versions {
		if v, ok := ParseLenient(raw); ok {
			req, err := semver.NewConstraint("^" + v.String())
			if err != nil {
				return "", nil, fmt.Errorf("%w: %s", ErrInvalidVersion, raw)
			}
			reqs = append(reqs, req)
			candidates = append(candidates, v)
			continue
		}

		req, err := semver.NewConstraint(raw)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidVersion, raw)
		}
		reqs = append(reqs, req)
	}

	if len(candidates) == 0 {
		return "", nil, ErrNoValidVersions
	}

	sort.Sort(sort.Reverse(semver.Collection(candidates)))

	for _, candidate := range candidates {
		satisfiesAll := true
		for _, req := range reqs {
			if !req.Check(candidate) {
				satisfiesAll = false
				break
			}
		}
		if satisfiesAll {
			return candidate.String(), members, nil
		}
	}

	return "", nil, ErrIncompatible
}

// SameVersion reports whether two version strings normalize to the same
// concrete version. Strings that do not parse compare by raw equality.
func SameVersion(a, b string) bool {
	if a == b {
		return true
	}
	va, okA := ParseLenient(a)
	vb, okB := ParseLenient(b)
	if !okA || !okB {
		return false
	}
	return va.Equal(vb)
}

package lookup

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Options carries the keyword options of a select-related call. Only "depth"
// is recognized.
type Options map[string]any

// EagerMode selects between shallow (one level) and full-depth eager loading.
type EagerMode int

const (
	EagerFull EagerMode = iota
	EagerShallow
)

func (m EagerMode) String() string {
	if m == EagerShallow {
		return "shallow"
	}
	return "full"
}

// EagerLoad is the planned eager-load directive attached to a query. Paths
// use "." as the level separator.
type EagerLoad struct {
	Mode  EagerMode
	Paths []string
}

// PlanRelated validates the depth option and expands the given paths into an
// eager-load directive. Paths may use "__" or "." as level separators. With
// depth unset, or with any multi-level path, the plan requests full-depth
// loading; with depth 1 and single-level paths only, it requests shallow
// loading.
func PlanRelated(paths []string, options Options) (EagerLoad, error) {
	needAll := true
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k != "depth" {
			return EagerLoad{}, errors.Wrapf(ErrUnexpectedOption, "option %q", k)
		}
	}
	if raw, present := options["depth"]; present && raw != nil {
		depth, ok := raw.(int)
		if !ok || depth != 1 {
			return EagerLoad{}, errors.Wrapf(ErrInvalidDepthOption, "depth %v", raw)
		}
		needAll = false
	}

	rewritten := make([]string, len(paths))
	for i, path := range paths {
		path = strings.ReplaceAll(path, pathDelimiter, ".")
		if strings.Contains(path, ".") {
			needAll = true
		}
		rewritten[i] = path
	}

	mode := EagerShallow
	if needAll {
		mode = EagerFull
	}
	return EagerLoad{Mode: mode, Paths: rewritten}, nil
}

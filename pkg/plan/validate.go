package plan

import (
	"errors"
	"fmt"

	"github.com/aretw0/cadence/pkg/domain"
)

// Validate checks the structural rules of a plan and returns every violation joined.
// isLeaf tells which leaf kinds are available; nil accepts the built-in ones.
func Validate(def Definition, isLeaf func(kind string) bool) error {
	if isLeaf == nil {
		isLeaf = func(kind string) bool {
			return kind == KindWait || kind == KindLog
		}
	}

	var errs []error
	invalid := func(path, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w: %s", path, domain.ErrInvalidPlan, fmt.Sprintf(format, args...)))
	}

	if def.Kind == KindRepeat {
		invalid(def.Name, "repeat must be a child of a series")
	}

	var check func(path string, d Definition, parentKind string)
	check = func(path string, d Definition, parentKind string) {
		if d.Name == "" {
			invalid(path, "missing name")
		}
		if d.Duration < 0 {
			invalid(path, "negative duration %s", d.Duration)
		}

		switch {
		case d.Kind == "":
			invalid(path, "missing kind")
		case d.Kind == KindRepeat:
			if d.Times < 1 {
				invalid(path, "repeat needs times >= 1, got %d", d.Times)
			}
			if len(d.Children) == 0 {
				invalid(path, "repeat needs children")
			}
			if parentKind != "" && parentKind != KindSeries {
				invalid(path, "repeat must be a child of a series, not %s", parentKind)
			}
		case IsStructural(d.Kind):
		case isLeaf(d.Kind):
			if len(d.Children) > 0 {
				invalid(path, "%s is a leaf and cannot have children", d.Kind)
			}
		default:
			errs = append(errs, fmt.Errorf("%s: %w: %s", path, domain.ErrUnknownKind, d.Kind))
		}

		for _, child := range d.Children {
			check(path+"/"+child.Name, child, d.Kind)
		}
	}
	check(def.Name, def, "")

	return errors.Join(errs...)
}

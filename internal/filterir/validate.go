package filterir

import (
	"fmt"
	"strings"
)

// ValidationResult lists structural problems found in a predicate tree.
//
// Problems are warnings rather than errors: every tree can be evaluated,
// but a warning usually means the filter selects nothing or everything
// when the author expected otherwise.
type ValidationResult struct {
	Valid    bool
	Warnings []string
}

// String joins the warnings, one per line.
func (r ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	return strings.Join(r.Warnings, "\n")
}

// Validate walks p and reports suspicious nodes. A nil predicate is valid.
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validatePredicate(p, false)

	return ValidationResult{
		Valid:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate, nested bool) {
	if p == nil {
		if nested {
			v.addWarning("nil predicate inside a composite")
		}
		return
	}

	switch pred := p.(type) {
	case TagIn:
		if len(pred.Tags) == 0 {
			v.addWarning("tag lookup without tags matches nothing")
		}
		for _, tag := range pred.Tags {
			if strings.TrimSpace(tag) == "" {
				v.addWarning("blank tag in tag lookup")
			}
		}
	case CreatedCompare:
		if !IsOrderingOp(pred.Op) {
			v.addWarning("created_at compared with unsupported operator %q", pred.Op)
		}
	case CreatedContains:
		if pred.Needle == "" {
			v.addWarning("created_at containment with empty needle matches everything")
		}
	case Equals:
		if !IsColumn(pred.Field) {
			v.addWarning("unknown column %q", pred.Field)
		}
		if !isScalar(pred.Value) {
			v.addWarning("column %q compared with unsupported value %T", pred.Field, pred.Value)
		}
	case SequenceBefore, Never:
	case Or:
		if len(pred.Predicates) == 0 {
			v.addWarning("empty OR matches nothing")
		}
		for _, child := range pred.Predicates {
			v.validatePredicate(child, true)
		}
	case And:
		for _, child := range pred.Predicates {
			v.validatePredicate(child, true)
		}
	default:
		v.addWarning("unknown predicate type: %T", p)
	}
}

// IsOrderingOp reports whether op is accepted by CreatedCompare.
func IsOrderingOp(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	}
	return false
}

// IsColumn reports whether name is a column Equals may reference.
func IsColumn(name string) bool {
	switch name {
	case ColumnType, ColumnBatchID, ColumnFamilyHash, ColumnShouldDisplayOnIndex:
		return true
	}
	return false
}

// isScalar reports whether v is a value Equals can compare.
func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64:
		return true
	}
	return false
}

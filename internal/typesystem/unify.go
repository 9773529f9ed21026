package typesystem

import "fmt"

// MismatchError reports two types with incompatible shapes.
type MismatchError struct {
	T1, T2 Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.T1, e.T2)
}

// InfiniteTypeError reports an occurs-check violation.
type InfiniteTypeError struct {
	Var TVar
	In  Type
}

func (e *InfiniteTypeError) Error() string {
	return fmt.Sprintf("infinite type: %s occurs in %s", e.Var, e.In)
}

// Unify attempts to find a substitution that makes t1 and t2 equal.
// It enforces strict equality (invariant).
func Unify(t1, t2 Type) (Subst, error) {
	switch t1 := t1.(type) {
	case TVar:
		return Bind(t1, t2)
	case TCon:
		switch t2 := t2.(type) {
		case TVar:
			return Bind(t2, t1)
		case TCon:
			if t1.Name == t2.Name {
				return Subst{}, nil
			}
			return nil, &MismatchError{T1: t1, T2: t2}
		default:
			return nil, &MismatchError{T1: t1, T2: t2}
		}
	case TArrow:
		switch t2 := t2.(type) {
		case TVar:
			return Bind(t2, t1)
		case TArrow:
			s1, err := Unify(t1.Head, t2.Head)
			if err != nil {
				return nil, err
			}
			s2, err := Unify(t1.Tail.Apply(s1), t2.Tail.Apply(s1))
			if err != nil {
				return nil, err
			}
			return s1.Compose(s2), nil
		default:
			return nil, &MismatchError{T1: t1, T2: t2}
		}
	default:
		return nil, &MismatchError{T1: t1, T2: t2}
	}
}

// Bind binds a type variable to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	if tVal, ok := t.(TVar); ok && tVal.Name == tv.Name {
		return Subst{}, nil
	}

	if OccursCheck(tv, t) {
		return nil, &InfiniteTypeError{Var: tv, In: t}
	}

	return Subst{tv.Name: t}, nil
}

// OccursCheck returns true if tv appears free in t.
func OccursCheck(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == tv.Name {
			return true
		}
	}
	return false
}

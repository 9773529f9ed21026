package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnify(t *testing.T) {
	varType := func(name string) TVar { return TVar{Name: name} }
	arrow := func(head, tail Type) TArrow { return TArrow{Head: head, Tail: tail} }

	tests := []struct {
		name    string
		t1      Type
		t2      Type
		wantErr bool
		wantSub Subst
	}{
		{
			name:    "Identity Int",
			t1:      Int,
			t2:      Int,
			wantSub: Subst{},
		},
		{
			name:    "Identity Var",
			t1:      varType("a"),
			t2:      varType("a"),
			wantSub: Subst{},
		},
		{
			name:    "Var to Const",
			t1:      varType("a"),
			t2:      Int,
			wantSub: Subst{"a": Int},
		},
		{
			name:    "Const to Var",
			t1:      Bool,
			t2:      varType("a"),
			wantSub: Subst{"a": Bool},
		},
		{
			name:    "Const mismatch",
			t1:      Int,
			t2:      Bool,
			wantErr: true,
		},
		{
			name:    "Const vs Arrow",
			t1:      Int,
			t2:      arrow(Int, Int),
			wantErr: true,
		},
		{
			name:    "Arrow components",
			t1:      arrow(varType("a"), varType("b")),
			t2:      arrow(Int, Bool),
			wantSub: Subst{"a": Int, "b": Bool},
		},
		{
			name:    "Arrow propagates bindings",
			t1:      arrow(varType("a"), varType("a")),
			t2:      arrow(Int, varType("b")),
			wantSub: Subst{"a": Int, "b": Int},
		},
		{
			name:    "Arrow arity mismatch inside",
			t1:      arrow(Int, Int),
			t2:      arrow(Int, arrow(Int, Int)),
			wantErr: true,
		},
		{
			name:    "Occurs check",
			t1:      varType("a"),
			t2:      arrow(varType("a"), Int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Unify(tt.t1, tt.t2)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, sub)
		})
	}
}

func TestUnifyErrorKinds(t *testing.T) {
	_, err := Unify(Int, Bool)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)

	_, err = Unify(TVar{Name: "a"}, TArrow{Head: TVar{Name: "a"}, Tail: Int})
	var infinite *InfiniteTypeError
	require.ErrorAs(t, err, &infinite)
	assert.Equal(t, "a", infinite.Var.Name)
}

func TestSubstCompose(t *testing.T) {
	s1 := Subst{"a": TVar{Name: "b"}}
	s2 := Subst{"b": Int}
	composed := s1.Compose(s2)
	assert.Equal(t, Int, TVar{Name: "a"}.Apply(composed))
	assert.Equal(t, Int, TVar{Name: "b"}.Apply(composed))
}

func TestArrowString(t *testing.T) {
	nested := TArrow{
		Head: TArrow{Head: Int, Tail: Int},
		Tail: Bool,
	}
	assert.Equal(t, "(int -> int) -> bool", nested.String())

	right := TArrow{
		Head: Int,
		Tail: TArrow{Head: Int, Tail: Bool},
	}
	assert.Equal(t, "int -> int -> bool", right.String())
}

func TestIsConcrete(t *testing.T) {
	assert.True(t, IsConcrete(Int))
	assert.True(t, IsConcrete(TArrow{Head: Int, Tail: Bool}))
	assert.False(t, IsConcrete(TVar{Name: "TV_1"}))
	assert.False(t, IsConcrete(TArrow{Head: TVar{Name: "a"}, Tail: Int}))
}

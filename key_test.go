package calcgraph

import (
	"math"
	"testing"
)

func TestKeyStability(t *testing.T) {
	a, err := newKey("node", []any{"x", 1, 2.5, true})
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, err := newKey("node", []any{"x", 1, 2.5, true})
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a != b {
		t.Errorf("equal calls must produce equal keys: %v vs %v", a, b)
	}
}

func TestKeyDistinguishesArguments(t *testing.T) {
	cases := [][2][]any{
		{{1}, {2}},
		{{1}, {"1"}},
		{{1.0}, {"1"}},
		{{true}, {"true"}},
		{{"a", "b"}, {"ab"}},
		{{"a", "b"}, {"a,b"}},
		{{}, {""}},
	}
	for _, c := range cases {
		a, err := newKey("node", c[0])
		if err != nil {
			t.Fatalf("key %v: %v", c[0], err)
		}
		b, err := newKey("node", c[1])
		if err != nil {
			t.Fatalf("key %v: %v", c[1], err)
		}
		if a == b {
			t.Errorf("args %v and %v must not collide", c[0], c[1])
		}
	}
}

func TestKeyDistinguishesNames(t *testing.T) {
	a, _ := newKey("alpha", nil)
	b, _ := newKey("beta", nil)
	if a == b {
		t.Error("distinct names must not collide")
	}
}

func TestKeyNormalizesIntegerKinds(t *testing.T) {
	a, err := newKey("node", []any{int32(7)})
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, err := newKey("node", []any{int64(7)})
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a != b {
		t.Error("integer kinds with equal values must share a key")
	}
}

func TestKeyRejectsNaN(t *testing.T) {
	if _, err := newKey("node", []any{math.NaN()}); err == nil {
		t.Error("expected NaN argument to be rejected")
	}
}

func TestKeyRejectsUnsupportedTypes(t *testing.T) {
	for _, arg := range []any{[]int{1}, map[string]int{}, struct{}{}, nil} {
		if _, err := newKey("node", []any{arg}); err == nil {
			t.Errorf("expected %T argument to be rejected", arg)
		}
	}
}

func TestKeyString(t *testing.T) {
	k, err := newKey("discount factor", []any{5, "usd"})
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if got := k.String(); got != `discount factor(5, "usd")` {
		t.Errorf("unexpected rendering %q", got)
	}
	if got := k.Name(); got != "discount factor" {
		t.Errorf("unexpected name %q", got)
	}

	bare, _ := newKey("spot", nil)
	if got := bare.String(); got != "spot" {
		t.Errorf("unexpected rendering %q", got)
	}
}

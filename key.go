package calcgraph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Param is a named argument. The engine supports positional
// parameterization only; passing a Param to Evaluate, Override,
// RemoveOverride or Invalidate fails with InvalidCallError. It exists so
// that call sites ported from keyword-argument systems fail loudly
// instead of silently keying on a struct value.
type Param struct {
	Name  string
	Value any
}

// P builds a named parameter.
func P(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// Key identifies one (node name, argument tuple) evaluation instance.
// Keys are comparable values: equal name and equal arguments always
// produce equal keys, and argument encodings are type-tagged so that,
// for example, 1 and "1" never collide. A Key is the sole identity used
// by the value cache, the override map and the dependents index.
type Key struct {
	name string
	args string
}

// argSep joins encoded arguments. Encodings never contain it: strings
// are quoted and the numeric formats use plain ASCII.
const argSep = "\x1f"

func newKey(name string, args []any) (Key, error) {
	if len(args) == 0 {
		return Key{name: name}, nil
	}

	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(argSep)
		}
		enc, err := encodeArg(arg)
		if err != nil {
			return Key{}, &InvalidCallError{Name: name, Reason: err.Error()}
		}
		sb.WriteString(enc)
	}

	return Key{name: name, args: sb.String()}, nil
}

// encodeArg canonicalizes a single argument. The supported domain is
// restricted to types with total, deterministic equality; NaN floats are
// rejected because they would violate key stability.
func encodeArg(arg any) (string, error) {
	switch v := arg.(type) {
	case Param:
		return "", fmt.Errorf("named parameters are not supported (got %s=%v)", v.Name, v.Value)
	case bool:
		if v {
			return "b:true", nil
		}
		return "b:false", nil
	case string:
		return "s:" + strconv.Quote(v), nil
	case int:
		return "i:" + strconv.FormatInt(int64(v), 10), nil
	case int8:
		return "i:" + strconv.FormatInt(int64(v), 10), nil
	case int16:
		return "i:" + strconv.FormatInt(int64(v), 10), nil
	case int32:
		return "i:" + strconv.FormatInt(int64(v), 10), nil
	case int64:
		return "i:" + strconv.FormatInt(v, 10), nil
	case uint:
		return "u:" + strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return "u:" + strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return "u:" + strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return "u:" + strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return "u:" + strconv.FormatUint(v, 10), nil
	case float32:
		return encodeFloat(float64(v))
	case float64:
		return encodeFloat(v)
	default:
		return "", fmt.Errorf("unsupported argument type %T", arg)
	}
}

func encodeFloat(f float64) (string, error) {
	if math.IsNaN(f) {
		return "", fmt.Errorf("NaN arguments are not supported")
	}
	return "f:" + strconv.FormatFloat(f, 'g', -1, 64), nil
}

// Name returns the node name the key was derived from.
func (k Key) Name() string {
	return k.name
}

// String renders the key as name(arg, ...) for logs and error messages.
func (k Key) String() string {
	if k.args == "" {
		return k.name
	}
	parts := strings.Split(k.args, argSep)
	for i, p := range parts {
		parts[i] = p[2:] // strip the type tag
	}
	return k.name + "(" + strings.Join(parts, ", ") + ")"
}

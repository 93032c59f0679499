package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Generated is one input produced by a generator.
type Generated struct {
	Input string
	// Expect is "accepted", "rejected", "inconclusive" or empty when the
	// generator made no claim.
	Expect string
}

// Generate runs code in a fresh sandbox and converts its result.
func Generate(ctx context.Context, name, code string) ([]Generated, error) {
	s := NewState()
	defer s.Close()

	ret, err := s.Eval(ctx, name, code)
	if err != nil {
		return nil, err
	}
	return convert(ret)
}

func convert(v lua.LValue) ([]Generated, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrBadResult, v.Type())
	}

	n := tbl.Len()
	out := make([]Generated, 0, n)
	for i := 1; i <= n; i++ {
		g, err := element(i, tbl.RawGetInt(i))
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func element(i int, v lua.LValue) (Generated, error) {
	switch e := v.(type) {
	case lua.LString:
		return Generated{Input: string(e)}, nil
	case lua.LNumber:
		return Generated{Input: e.String()}, nil
	case *lua.LTable:
		input, ok := e.RawGetString("input").(lua.LString)
		if !ok {
			return Generated{}, &ResultError{Index: i, Message: "input must be a string"}
		}
		g := Generated{Input: string(input)}
		switch x := e.RawGetString("expect").(type) {
		case *lua.LNilType:
		case lua.LBool:
			if x {
				g.Expect = "accepted"
			} else {
				g.Expect = "rejected"
			}
		case lua.LString:
			switch string(x) {
			case "accepted", "rejected", "inconclusive":
				g.Expect = string(x)
			default:
				return Generated{}, &ResultError{Index: i, Message: fmt.Sprintf("unknown expectation %q", string(x))}
			}
		default:
			return Generated{}, &ResultError{Index: i, Message: "expect must be a boolean or a verdict name"}
		}
		return g, nil
	default:
		return Generated{}, &ResultError{Index: i, Message: fmt.Sprintf("unexpected %s", v.Type())}
	}
}

package vm

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Built-in functions
// ---------------------------------------------------------------------------

// Builtins returns the functions pre-registered in every global frame.
func Builtins() []*Builtin {
	return []*Builtin{
		{Name: "to_string", Call: builtinToString},
		{Name: "to_number", Call: builtinToNumber},
		{Name: "split", Call: builtinSplit},
		{Name: "substring", Call: builtinSubstring},
		{Name: "__append", Call: builtinAppend},
		{Name: "size", Call: builtinSize},
	}
}

func builtinToString(args []Value) (Value, error) {
	if len(args) != 1 {
		return None, invalidf("to_string requires exactly one argument")
	}
	return FromString(FormatValue(args[0])), nil
}

func builtinToNumber(args []Value) (Value, error) {
	if len(args) != 1 {
		return None, invalidf("to_number requires exactly one argument")
	}
	switch args[0].Kind() {
	case KindInt, KindFloat:
		return args[0], nil
	case KindBool:
		if args[0].Bool() {
			return FromInt(1), nil
		}
		return FromInt(0), nil
	case KindString:
		s := strings.TrimSpace(args[0].Str())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return FromInt(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FromFloat(f), nil
		}
		return None, invalidf("cannot convert %q to a number", args[0].Str())
	}
	return None, invalidf("cannot convert %s to a number", args[0].Kind())
}

func builtinSplit(args []Value) (Value, error) {
	if len(args) != 2 {
		return None, invalidf("split requires exactly two arguments: string and delimiter")
	}
	if args[0].Kind() != KindString {
		return None, invalidf("first argument to split must be a string, got %s", args[0].Kind())
	}
	if args[1].Kind() != KindString {
		return None, invalidf("second argument to split must be a string, got %s", args[1].Kind())
	}
	parts := strings.Split(args[0].Str(), args[1].Str())
	elems := make([]Value, len(parts))
	for i, p := range parts {
		elems[i] = FromString(p)
	}
	return FromArray(NewArray(elems...)), nil
}

func builtinSubstring(args []Value) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return None, invalidf("substring requires 2 or 3 arguments: string, start, [end]")
	}
	if args[0].Kind() != KindString {
		return None, invalidf("first argument to substring must be a string, got %s", args[0].Kind())
	}
	if args[1].Kind() != KindInt {
		return None, invalidf("second argument to substring must be an integer, got %s", args[1].Kind())
	}
	runes := []rune(args[0].Str())
	start := clampIndex(args[1].Int(), len(runes))
	end := len(runes)
	if len(args) == 3 {
		if args[2].Kind() != KindInt {
			return None, invalidf("third argument to substring must be an integer, got %s", args[2].Kind())
		}
		end = clampIndex(args[2].Int(), len(runes))
	}
	if start > end {
		return FromString(""), nil
	}
	return FromString(string(runes[start:end])), nil
}

// clampIndex resolves a possibly negative index against length n and
// clamps it into [0, n], matching slice extraction semantics.
func clampIndex(i int64, n int) int {
	if i < 0 {
		i += int64(n)
		if i < 0 {
			i = 0
		}
	}
	if i > int64(n) {
		i = int64(n)
	}
	return int(i)
}

func builtinAppend(args []Value) (Value, error) {
	if len(args) != 2 {
		return None, invalidf("__append requires exactly two arguments: array and value")
	}
	if args[0].Kind() != KindArray {
		return None, invalidf("first argument to __append must be an array, got %s", args[0].Kind())
	}
	arr := args[0].Array()
	arr.Elems = append(arr.Elems, args[1])
	return args[0], nil
}

func builtinSize(args []Value) (Value, error) {
	if len(args) != 1 {
		return None, invalidf("size requires exactly one argument")
	}
	n, err := sizeOf(args[0])
	if err != nil {
		return None, err
	}
	return FromInt(n), nil
}

// sizeOf is shared by the size built-in and the GET_SIZE opcode.
func sizeOf(v Value) (int64, error) {
	switch v.Kind() {
	case KindNone:
		return 0, nil
	case KindString:
		return int64(len([]rune(v.Str()))), nil
	case KindArray:
		return int64(len(v.Array().Elems)), nil
	case KindMap:
		return int64(v.Map().Len()), nil
	}
	return 0, invalidf("cannot get size of %s", v.Kind())
}

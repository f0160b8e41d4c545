package eval

import (
	"fmt"

	"github.com/arrshell/arrsh/internal/jsonvalue"
	"github.com/arrshell/arrsh/internal/tree"
)

// astFromJSONValue converts a parsed JSON value into a value-tree
// node: null becomes the sentinel symbol --Null, objects become the
// canonical [keys, values] pair of parallel arrays (the language has
// no native mapping type), and everything else converts directly.
func astFromJSONValue(v *jsonvalue.Value, loc tree.Location) *tree.Node {
	switch v.Kind() {
	case jsonvalue.KindString:
		return tree.NewString(v.StringValue(), loc)
	case jsonvalue.KindNumber:
		return tree.NewNum(v.NumberValue(), loc)
	case jsonvalue.KindInt64:
		return tree.NewNum(float64(v.Int64Value()), loc)
	case jsonvalue.KindBoolean:
		n := 0.0
		if v.BoolValue() {
			n = 1.0
		}
		return tree.NewNum(n, loc)
	case jsonvalue.KindArray:
		elems := v.ArrayElements()
		out := make([]*tree.Node, len(elems))
		for i, e := range elems {
			out[i] = astFromJSONValue(e, loc)
		}
		return tree.NewArray(out, loc)
	case jsonvalue.KindObject:
		keys := v.ObjectKeys()
		keyNodes := make([]*tree.Node, len(keys))
		valNodes := make([]*tree.Node, len(keys))
		for i, k := range keys {
			keyNodes[i] = tree.NewString(k, loc)
			valNodes[i] = astFromJSONValue(v.ObjectGet(k), loc)
		}
		return tree.NewArray([]*tree.Node{tree.NewArray(keyNodes, loc), tree.NewArray(valNodes, loc)}, loc)
	default:
		return tree.NewSymbol("--Null", loc)
	}
}

// jsonValueFromAST converts a value-tree node to a JSON value for
// stringification. There is deliberately no object-reconstruction case
// here, even for a node shaped like the [keys, values] pair
// astFromJSONValue produces — round-tripping a parsed JSON object
// through `json` yields back a bare array of two arrays, not an
// object.
func (c *ctx) jsonValueFromAST(n *tree.Node) (*jsonvalue.Value, error) {
	switch n.Kind {
	case tree.KindNum:
		return jsonvalue.NewNumber(n.NumVal), nil
	case tree.KindString, tree.KindSymbol, tree.KindIdent:
		return jsonvalue.NewString(n.Str), nil
	case tree.KindArray:
		arr := jsonvalue.NewArray()
		for _, e := range n.Elems {
			v, err := c.jsonValueFromAST(e)
			if err != nil {
				return nil, err
			}
			arr.ArrayAppend(v)
		}
		return arr, nil
	default:
		return nil, c.err(n.Location, "Invalid AST to jsonify.",
			fmt.Sprintf("The given value was:\n%s", show(n)))
	}
}

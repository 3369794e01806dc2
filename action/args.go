package action

import "github.com/townloop/engine/domain"

func argString(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func argDirection(args map[string]any, key string) (domain.Direction, bool) {
	v, ok := args[key].(string)
	if !ok {
		return "", false
	}
	d := domain.Direction(v)
	for _, candidate := range domain.AllDirections {
		if candidate == d {
			return d, true
		}
	}
	return "", false
}

func argInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func argPosition(args map[string]any, xKey, yKey string) (domain.Position, bool) {
	x, ok1 := argInt(args, xKey)
	y, ok2 := argInt(args, yKey)
	if !ok1 || !ok2 {
		return domain.Position{}, false
	}
	return domain.Position{X: x, Y: y}, true
}

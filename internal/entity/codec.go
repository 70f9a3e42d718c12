package entity

import (
	"fmt"
	"math"
)

// Decode builds an entity from its raw (JSON) form. Link data needs a string
// "url"; mention data needs an integer "mentionId", or the mention plugin's
// {"mention": {"id": n}} shape.
func Decode(typ, mutability string, raw map[string]any) (Entity, error) {
	t := Type(typ)
	switch t {
	case TypeLink:
		v, ok := raw["url"]
		if !ok || v == nil {
			return Entity{}, invalid(t, "missing url")
		}
		url, ok := v.(string)
		if !ok {
			return Entity{}, invalid(t, fmt.Sprintf("url must be a string, got %T", v))
		}
		return New(t, Mutability(mutability), LinkData{URL: url})
	case TypeMention:
		v, ok := raw["mentionId"]
		if !ok {
			if nested, isMap := raw["mention"].(map[string]any); isMap {
				v, ok = nested["id"]
			}
		}
		if !ok {
			return Entity{}, invalid(t, "missing mentionId")
		}
		id, err := integer(v)
		if err != nil {
			return Entity{}, invalid(t, err.Error())
		}
		return New(t, Mutability(mutability), MentionData{MentionID: id})
	default:
		return Entity{}, invalid(t, "unknown entity type")
	}
}

// Encode returns the raw data map of e.
func (e Entity) Encode() map[string]any {
	switch d := e.data.(type) {
	case LinkData:
		return map[string]any{"url": d.URL}
	case MentionData:
		return map[string]any{"mentionId": d.MentionID}
	}
	return map[string]any{}
}

func integer(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("mentionId must be an integer, got %v", n)
		}
		return int64(n), nil
	case interface{ Int64() (int64, error) }:
		return n.Int64()
	default:
		return 0, fmt.Errorf("mentionId must be an integer, got %T", v)
	}
}

/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rank

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Strategy looks for a rank in one known response shape. doc is a value
// decoded by encoding/json with UseNumber.
type Strategy interface {
	Name() string
	Extract(doc any) (int, bool)
}

// Path finds a number at a fixed chain of object keys.
type Path []string

func (p Path) Name() string { return strings.Join(p, ".") }

func (p Path) Extract(doc any) (int, bool) {
	cur := doc
	for _, key := range p {
		obj, ok := cur.(map[string]any)
		if !ok {
			return 0, false
		}
		if cur, ok = obj[key]; !ok {
			return 0, false
		}
	}
	return number(cur)
}

// Items finds the first element of a top-level array field holding a number
// under Key.
type Items struct {
	Array string
	Key   string
}

func (i Items) Name() string { return i.Array + "[]." + i.Key }

func (i Items) Extract(doc any) (int, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return 0, false
	}
	list, ok := obj[i.Array].([]any)
	if !ok {
		return 0, false
	}
	for _, item := range list {
		if n, ok := (Path{i.Key}).Extract(item); ok {
			return n, true
		}
	}
	return 0, false
}

// DefaultStrategies lists the shapes the ranking service has used, most
// specific first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		Path{"container", "json_dict", "card", "rank"},
		Path{"rank"},
		Path{"stats", "rank"},
		Path{"meta", "rank"},
		Items{Array: "items", Key: "rank"},
	}
}

// Extract runs strategies in order and returns the first rank found.
func Extract(doc any, strategies []Strategy) (int, bool) {
	for _, s := range strategies {
		if n, ok := s.Extract(doc); ok {
			return n, true
		}
	}
	return 0, false
}

// number reads a rank from a decoded JSON value. Ranks start at 1, so zero,
// negative and out of range values are treated as missing.
func number(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Package filters parses and evaluates template filter strings of the form
// "key=value,key2=value2".
package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/printdesk/pkg/domain"
)

// Pair is one key=value constraint.
type Pair struct {
	Key   string
	Value string
}

// Parse splits a filter string into ordered pairs. An empty string yields no pairs.
func Parse(s string) ([]Pair, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []Pair
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		k, v, ok := strings.Cut(raw, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("Invalid filter: %s", raw)
		}
		out = append(out, Pair{Key: k, Value: strings.TrimSpace(v)})
	}
	return out, nil
}

// Validate parses s and, when allowed is non-empty, rejects keys outside it.
func Validate(s string, allowed []string) error {
	pairs, err := Parse(s)
	if err != nil {
		return err
	}
	if len(allowed) == 0 {
		return nil
	}
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}
	for _, p := range pairs {
		if _, found := ok[p.Key]; !found {
			return fmt.Errorf("Invalid filter: %s=%s", p.Key, p.Value)
		}
	}
	return nil
}

// Match reports whether item satisfies every pair.
func Match(item domain.Item, pairs []Pair) bool {
	for _, p := range pairs {
		v, ok := lookup(item, p.Key)
		if !ok || !equal(v, p.Value) {
			return false
		}
	}
	return true
}

// MatchString parses s and matches item against it. Malformed filters never match.
func MatchString(item domain.Item, s string) bool {
	pairs, err := Parse(s)
	if err != nil {
		return false
	}
	return Match(item, pairs)
}

func lookup(item domain.Item, key string) (any, bool) {
	switch key {
	case "pk", "id":
		return item.ID, true
	case "name":
		if _, ok := item.Fields["name"]; !ok {
			return item.Name, true
		}
	}
	v, ok := item.Fields[key]
	return v, ok
}

func equal(v any, want string) bool {
	switch t := v.(type) {
	case bool:
		b, err := parseBool(want)
		return err == nil && b == t
	case nil:
		return strings.EqualFold(want, "none") || strings.EqualFold(want, "null") || want == ""
	default:
		return fmt.Sprint(t) == want
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "t", "y":
		return true, nil
	case "false", "0", "no", "f", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

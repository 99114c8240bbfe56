package config

import (
	"fmt"
	"strings"
)

// StaffEntry is one unvalidated staff record from configuration.
type StaffEntry struct {
	Name    string
	Address string
}

// ParseStaff reads the staff list in any of the supported shapes:
// a list of {name, address} maps from a config file, or "Name=0xAddr" pairs
// from a flag or environment variable. Entry order is preserved and
// malformed entries are kept so the directory can report them.
func ParseStaff(val interface{}) []StaffEntry {
	switch typed := val.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]StaffEntry, 0, len(typed))
		for _, item := range typed {
			switch entry := item.(type) {
			case map[string]interface{}:
				out = append(out, staffFromMap(entry))
			case map[interface{}]interface{}:
				converted := make(map[string]interface{}, len(entry))
				for k, v := range entry {
					converted[fmt.Sprintf("%v", k)] = v
				}
				out = append(out, staffFromMap(converted))
			default:
				out = append(out, staffFromPair(fmt.Sprintf("%v", item)))
			}
		}
		return out
	default:
		pairs := toStringSlice(val)
		out := make([]StaffEntry, 0, len(pairs))
		for _, pair := range pairs {
			out = append(out, staffFromPair(pair))
		}
		return out
	}
}

func staffFromMap(entry map[string]interface{}) StaffEntry {
	return StaffEntry{
		Name:    stringField(entry, "name"),
		Address: stringField(entry, "address"),
	}
}

func stringField(entry map[string]interface{}, key string) string {
	for k, v := range entry {
		if strings.EqualFold(k, key) && v != nil {
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
	return ""
}

func staffFromPair(pair string) StaffEntry {
	parts := strings.SplitN(pair, "=", 2)
	entry := StaffEntry{Name: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		entry.Address = strings.TrimSpace(parts[1])
	}
	return entry
}

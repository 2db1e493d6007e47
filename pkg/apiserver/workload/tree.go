package workload

import (
	"sort"

	"github.com/spf13/cast"
	"k8s.io/apimachinery/pkg/util/intstr"
)

type object = map[string]interface{}

func setString(m object, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func setInt32(m object, key string, value *int32) {
	if value != nil {
		m[key] = int64(*value)
	}
}

func setInt64(m object, key string, value *int64) {
	if value != nil {
		m[key] = *value
	}
}

func setBool(m object, key string, value *bool) {
	if value != nil {
		m[key] = *value
	}
}

// setObject stores child only when it has at least one key.
func setObject(m object, key string, child object) {
	if len(child) > 0 {
		m[key] = child
	}
}

func setList(m object, key string, list []interface{}) {
	if len(list) > 0 {
		m[key] = list
	}
}

func setStrings(m object, key string, values []string) {
	if len(values) == 0 {
		return
	}
	list := make([]interface{}, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	m[key] = list
}

// stringMap returns a fresh tree map on every call, so no two places in a
// manifest share the same map value.
func stringMap(in map[string]string) object {
	if len(in) == 0 {
		return nil
	}
	out := make(object, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func intOrString(v intstr.IntOrString) interface{} {
	if v.Type == intstr.String {
		return v.StrVal
	}
	return int64(v.IntVal)
}

func setIntOrString(m object, key string, v *intstr.IntOrString) {
	if v != nil {
		m[key] = intOrString(*v)
	}
}

// getObject returns the map stored under key, or nil.
func getObject(m object, key string) object {
	if m == nil {
		return nil
	}
	child, _ := m[key].(map[string]interface{})
	return child
}

// getObjects returns the map entries of the list under key, skipping
// anything that is not a map.
func getObjects(m object, key string) []object {
	if m == nil {
		return nil
	}
	list, _ := m[key].([]interface{})
	var out []object
	for _, item := range list {
		if child, ok := item.(map[string]interface{}); ok {
			out = append(out, child)
		}
	}
	return out
}

func getString(m object, key string) string {
	if m == nil || m[key] == nil {
		return ""
	}
	return cast.ToString(m[key])
}

func getStrings(m object, key string) []string {
	if m == nil {
		return nil
	}
	list, ok := m[key].([]interface{})
	if !ok {
		out, _ := m[key].([]string)
		return out
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, cast.ToString(item))
	}
	return out
}

// getInt32 returns nil when the key is absent or not numeric.
func getInt32(m object, key string) *int32 {
	if m == nil || m[key] == nil {
		return nil
	}
	v, err := cast.ToInt32E(m[key])
	if err != nil {
		return nil
	}
	return &v
}

func getInt64(m object, key string) *int64 {
	if m == nil || m[key] == nil {
		return nil
	}
	v, err := cast.ToInt64E(m[key])
	if err != nil {
		return nil
	}
	return &v
}

func getBool(m object, key string) *bool {
	if m == nil || m[key] == nil {
		return nil
	}
	v, err := cast.ToBoolE(m[key])
	if err != nil {
		return nil
	}
	return &v
}

// getIntOrString keeps numbers as ints and parses numeric strings the same
// way the API server does.
func getIntOrString(m object, key string) *intstr.IntOrString {
	if m == nil || m[key] == nil {
		return nil
	}
	if s, ok := m[key].(string); ok {
		v := intstr.Parse(s)
		return &v
	}
	n, err := cast.ToInt32E(m[key])
	if err != nil {
		return nil
	}
	v := intstr.FromInt32(n)
	return &v
}

func getStringMap(m object, key string) map[string]string {
	child := getObject(m, key)
	if len(child) == 0 {
		return nil
	}
	out := make(map[string]string, len(child))
	for k, v := range child {
		out[k] = cast.ToString(v)
	}
	return out
}

func sortedKeys(m object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func defaultOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"reflect"
	"strings"
)

// sensitiveKeywords mark field names whose values are masked.
var sensitiveKeywords = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"credential",
}

// MaskSecrets converts data into maps and slices with every sensitive
// field replaced by "***". Empty secrets stay empty so "unset" remains visible.
func MaskSecrets(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		result := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			result[key] = maskField(key, iter.Value())
		}
		return result

	case reflect.Slice, reflect.Array:
		result := make([]any, val.Len())
		for i := range result {
			result[i] = MaskSecrets(val.Index(i).Interface())
		}
		return result

	case reflect.Struct:
		typ := val.Type()
		result := make(map[string]any, typ.NumField())
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			result[field.Name] = maskField(field.Name, val.Field(i))
		}
		return result

	default:
		return val.Interface()
	}
}

func maskField(name string, v reflect.Value) any {
	if !isSensitiveKey(name) {
		return MaskSecrets(v.Interface())
	}
	if v.Kind() == reflect.String && v.Len() == 0 {
		return ""
	}
	return "***"
}

// isSensitiveKey checks if a key name contains any sensitive keyword.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}

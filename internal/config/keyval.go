package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// KeyValue represents a config key and its value
type KeyValue struct {
	Key   string
	Value string
}

// getTOMLKey extracts the TOML key name from a struct field's tag.
func getTOMLKey(field reflect.StructField) string {
	tag := field.Tag.Get("toml")
	if tag == "" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

// IsValidKey returns true if the key is a Config field.
func IsValidKey(key string) bool {
	_, err := findField(reflect.ValueOf(Config{}), key)
	return err == nil
}

// GetConfigValue retrieves a value from cfg by its TOML key.
func GetConfigValue(cfg *Config, key string) (string, error) {
	field, err := findField(reflect.ValueOf(cfg).Elem(), key)
	if err != nil {
		return "", err
	}
	return formatValue(field), nil
}

// SetConfigValue sets a value on cfg by its TOML key, converting the
// string to the field's type. The result is validated.
func SetConfigValue(cfg *Config, key, value string) error {
	field, err := findField(reflect.ValueOf(cfg).Elem(), key)
	if err != nil {
		return err
	}
	if err := setFieldValue(field, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if key == "server_addr" {
		cfg.ServerAddr = NormalizeServerAddr(cfg.ServerAddr)
	}
	return cfg.Validate()
}

// ListConfigKeys returns every key with its current value, in struct order.
func ListConfigKeys(cfg *Config) []KeyValue {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	var kvs []KeyValue
	for i := 0; i < t.NumField(); i++ {
		key := getTOMLKey(t.Field(i))
		if key == "" {
			continue
		}
		kvs = append(kvs, KeyValue{Key: key, Value: formatValue(v.Field(i))})
	}
	return kvs
}

func findField(v reflect.Value, key string) (reflect.Value, error) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if getTOMLKey(t.Field(i)) == key {
			return v.Field(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unknown config key: %q", key)
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %q", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %q", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/cocowh/pagebuf/core/config/parser"
	"github.com/cocowh/pagebuf/core/iface"
	"github.com/cocowh/pagebuf/core/utils"
	"github.com/cocowh/pagebuf/pkg/errors"
)

// BaseConfig is a thread-safe iface.Config backed by a flat map of
// lower-case dotted keys.
type BaseConfig struct {
	mutex     sync.RWMutex
	values    map[string]any
	callbacks map[string][]iface.CallbackFunc
	loaders   []iface.Loader
	path      string
}

func NewBaseConfig() *BaseConfig {
	return &BaseConfig{
		values:    make(map[string]any),
		callbacks: make(map[string][]iface.CallbackFunc),
	}
}

// AddLoader registers loaders run by Load, in order.
func (c *BaseConfig) AddLoader(loaders ...iface.Loader) {
	c.mutex.Lock()
	c.loaders = append(c.loaders, loaders...)
	c.mutex.Unlock()
}

// SetPath sets the file Save writes to. The extension picks the format.
func (c *BaseConfig) SetPath(path string) {
	c.mutex.Lock()
	c.path = path
	c.mutex.Unlock()
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (c *BaseConfig) Get(key string) (any, bool) {
	key = normalizeKey(key)
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key. Maps are flattened into dotted keys and
// change callbacks fire for every leaf whose value changed.
func (c *BaseConfig) Set(key string, value any) {
	leaves := make(map[string]any)
	flatten(normalizeKey(key), value, leaves)

	type change struct {
		key      string
		old, new any
	}
	var changes []change
	c.mutex.Lock()
	for k, v := range leaves {
		old, existed := c.values[k]
		c.values[k] = v
		if !existed || !reflect.DeepEqual(old, v) {
			changes = append(changes, change{k, old, v})
		}
	}
	c.mutex.Unlock()

	for _, ch := range changes {
		c.notify(ch.key, ch.old, ch.new)
	}
}

func flatten(prefix string, value any, out map[string]any) {
	switch m := value.(type) {
	case map[string]any:
		for k, v := range m {
			flatten(join(prefix, normalizeKey(k)), v, out)
		}
	case map[any]any:
		for k, v := range m {
			flatten(join(prefix, normalizeKey(fmt.Sprint(k))), v, out)
		}
	default:
		out[prefix] = value
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (c *BaseConfig) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *BaseConfig) Unset(key string) {
	key = normalizeKey(key)
	c.mutex.Lock()
	old, ok := c.values[key]
	delete(c.values, key)
	c.mutex.Unlock()
	if ok {
		c.notify(key, old, nil)
	}
}

// Load runs the registered loaders. Every loader runs even if an earlier
// one fails; the errors are combined.
func (c *BaseConfig) Load() error {
	c.mutex.RLock()
	loaders := append([]iface.Loader(nil), c.loaders...)
	c.mutex.RUnlock()
	return Load(c, loaders...)
}

// Save writes the config, nested, to the path set with SetPath.
func (c *BaseConfig) Save() error {
	c.mutex.RLock()
	path := c.path
	c.mutex.RUnlock()
	if path == "" {
		return errors.ConfigError(errors.ErrCodeConfigInvalid, "no config file to save to")
	}
	data, err := parser.ForPath(path).Marshal(c.nested())
	if err != nil {
		return errors.ConfigError(errors.ErrCodeConfigInvalid, "config cannot be encoded").WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ConfigError(errors.ErrCodeConfigInvalid, "config file not writable").
			WithCause(err).WithContext("path", path)
	}
	return nil
}

// nested rebuilds the map hierarchy from the dotted keys.
func (c *BaseConfig) nested() map[string]any {
	c.mutex.RLock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	root := make(map[string]any)
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = c.values[k]
	}
	c.mutex.RUnlock()
	return root
}

func (c *BaseConfig) GetString(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

func (c *BaseConfig) GetInt(key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		return utils.StringToInt(n)
	}
	return 0, false
}

func (c *BaseConfig) GetFloat(key string) (float64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		return utils.StringToFloat(n)
	}
	return 0, false
}

func (c *BaseConfig) GetBool(key string) (bool, bool) {
	v, ok := c.Get(key)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return utils.StringToBool(b)
	}
	return false, false
}

func (c *BaseConfig) GetStringSlice(key string) ([]string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	case string:
		return utils.StringToSlice(s, ","), true
	}
	return nil, false
}

// GetMap returns the keys under key, with the prefix stripped.
func (c *BaseConfig) GetMap(key string) (map[string]any, bool) {
	prefix := normalizeKey(key) + "."
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make(map[string]any)
	for k, v := range c.values {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out, len(out) > 0
}

func (c *BaseConfig) OnChange(key string, callback iface.CallbackFunc) {
	key = normalizeKey(key)
	c.mutex.Lock()
	c.callbacks[key] = append(c.callbacks[key], callback)
	c.mutex.Unlock()
}

func (c *BaseConfig) OffChange(key string, callback iface.CallbackFunc) {
	key = normalizeKey(key)
	target := reflect.ValueOf(callback).Pointer()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	cbs := c.callbacks[key]
	for i, cb := range cbs {
		if reflect.ValueOf(cb).Pointer() == target {
			c.callbacks[key] = append(cbs[:i:i], cbs[i+1:]...)
			return
		}
	}
}

func (c *BaseConfig) notify(key string, oldValue, newValue any) {
	c.mutex.RLock()
	cbs := append([]iface.CallbackFunc(nil), c.callbacks[key]...)
	c.mutex.RUnlock()
	for _, cb := range cbs {
		cb(oldValue, newValue)
	}
}

// Load runs each loader against c and combines their errors.
func Load(c iface.Config, loaders ...iface.Loader) error {
	var err error
	for _, l := range loaders {
		err = multierr.Append(err, l.Load(c))
	}
	return err
}

var _ iface.Config = (*BaseConfig)(nil)

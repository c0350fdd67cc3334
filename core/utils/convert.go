// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"strconv"
	"strings"
)

func StringToInt(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}

// StringToBool also accepts yes/no and on/off.
func StringToBool(s string) (bool, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	default:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, false
		}
		return b, true
	}
}

func StringToFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// StringToSlice splits s on sep, dropping empty items and one level of
// surrounding brackets, so "[a, b]" and "a,b" give the same result.
func StringToSlice(s string, sep string) []string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		firstChar := s[0]
		lastChar := s[len(s)-1]
		if (firstChar == '[' && lastChar == ']') || (firstChar == '(' && lastChar == ')') || (firstChar == '{' && lastChar == '}') {
			s = s[1 : len(s)-1]
		}
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

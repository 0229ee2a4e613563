/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"strconv"
	"strings"
)

// namedColors covers the names accepted in directives and style files.
var namedColors = map[string]Color{
	"white":   {255, 255, 255, 255},
	"black":   {0, 0, 0, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
}

// ParseColor parses a color literal: a known name, #RGB, #RRGGBB, #RRGGBBAA,
// or rgb(r,g,b) / rgba(r,g,b,a) with 0-255 components.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Color{}, false
	}
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseRGBColor(s[4:len(s)-1], false)
	}
	if strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")") {
		return parseRGBColor(s[5:len(s)-1], true)
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	expand := func(c byte) uint8 {
		v, _ := strconv.ParseUint(string([]byte{c, c}), 16, 8)
		return uint8(v)
	}
	switch len(hex) {
	case 3:
		for i := 0; i < 3; i++ {
			if !isHexDigit(hex[i]) {
				return Color{}, false
			}
		}
		return Color{expand(hex[0]), expand(hex[1]), expand(hex[2]), 255}, true
	case 6, 8:
		var parts [4]uint8
		parts[3] = 255
		for i := 0; i*2 < len(hex); i++ {
			v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return Color{}, false
			}
			parts[i] = uint8(v)
		}
		return Color{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return Color{}, false
}

func parseRGBColor(body string, withAlpha bool) (Color, bool) {
	fields := strings.Split(body, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(fields) != want {
		return Color{}, false
	}
	var vals [4]uint8
	vals[3] = 255
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 || n > 255 {
			return Color{}, false
		}
		vals[i] = uint8(n)
	}
	return Color{vals[0], vals[1], vals[2], vals[3]}, true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f'
}

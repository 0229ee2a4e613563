/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober reports the intrinsic duration of a media file in seconds.
type Prober interface {
	MediaDuration(path string) (float64, error)
}

// FFProbe runs ffprobe through the ffmpeg-go bindings. It needs ffprobe on
// PATH.
type FFProbe struct{}

func (FFProbe) MediaDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	d, err := parseProbeDuration(out)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return d, nil
}

// probeResult matches the ffprobe JSON output. Container duration lives in
// format; some containers only report it per stream.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

func parseProbeDuration(raw string) (float64, error) {
	var pr probeResult
	if err := json.Unmarshal([]byte(raw), &pr); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if d, err := strconv.ParseFloat(pr.Format.Duration, 64); err == nil && d > 0 {
		return d, nil
	}
	for _, s := range pr.Streams {
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d > 0 {
			return d, nil
		}
	}
	return 0, errors.New("no duration reported")
}

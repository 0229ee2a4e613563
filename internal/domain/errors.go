/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "fmt"

// Directive failures abort the whole document. Each type carries the span of
// the offending directive so callers can point at the source. Clamping is
// reserved for opacity and volume; everything else that is out of range
// surfaces as one of these.

// MarkerError is implemented by all directive-level failures.
type MarkerError interface {
	error
	MarkerSpan() Span
}

// MalformedMarkerError reports unparseable directive syntax: an unterminated
// delimiter, an unknown kind, or an attribute value that does not parse.
type MalformedMarkerError struct {
	Span   Span
	Reason string
}

func (e *MalformedMarkerError) Error() string {
	return fmt.Sprintf("%s: malformed directive: %s", e.Span, e.Reason)
}
func (e *MalformedMarkerError) MarkerSpan() Span { return e.Span }

// UnsupportedAttributeError reports an attribute name that is unknown, or
// legal only on a different directive kind.
type UnsupportedAttributeError struct {
	Span Span
	Kind MarkerKind
	Attr string
}

func (e *UnsupportedAttributeError) Error() string {
	return fmt.Sprintf("%s: attribute %q is not supported on %s directives", e.Span, e.Attr, e.Kind)
}
func (e *UnsupportedAttributeError) MarkerSpan() Span { return e.Span }

// InvalidChannelError reports a negative channel index.
type InvalidChannelError struct {
	Span    Span
	Channel int
}

func (e *InvalidChannelError) Error() string {
	return fmt.Sprintf("%s: channel must be a non-negative integer, got %d", e.Span, e.Channel)
}
func (e *InvalidChannelError) MarkerSpan() Span { return e.Span }

// InvalidPositionError reports a position that is neither a named anchor nor
// a coordinate pair.
type InvalidPositionError struct {
	Span  Span
	Value string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("%s: invalid position %q", e.Span, e.Value)
}
func (e *InvalidPositionError) MarkerSpan() Span { return e.Span }

// MissingTimestampError reports a second directive of the same kind and
// channel omitting its timestamp; only the first may default to 0.
type MissingTimestampError struct {
	Span    Span
	Kind    MarkerKind
	Channel int
}

func (e *MissingTimestampError) Error() string {
	return fmt.Sprintf("%s: %s directive on channel %d needs an explicit timestamp", e.Span, e.Kind, e.Channel)
}
func (e *MissingTimestampError) MarkerSpan() Span { return e.Span }

// InvalidTimestampError reports a timestamp that can never yield a valid
// placement: negative, or at/after the end of the timeline.
type InvalidTimestampError struct {
	Span      Span
	Timestamp float64
	Total     float64
}

func (e *InvalidTimestampError) Error() string {
	if e.Timestamp < 0 {
		return fmt.Sprintf("%s: timestamp %.3f is negative", e.Span, e.Timestamp)
	}
	return fmt.Sprintf("%s: timestamp %.3f is at or past the timeline end (%.3f)", e.Span, e.Timestamp, e.Total)
}
func (e *InvalidTimestampError) MarkerSpan() Span { return e.Span }

// UnresolvableDurationError reports a document whose total duration cannot be
// determined: no video_duration directive, no narration, and no placement
// with an explicit end.
type UnresolvableDurationError struct{}

func (e *UnresolvableDurationError) Error() string {
	return "total duration is unresolvable: no video_duration directive, no narration, and no explicit placement ends"
}

// NarrationUnavailableError reports a failed or zero-length speech synthesis
// for a document that needs narration.
type NarrationUnavailableError struct {
	Err error
}

func (e *NarrationUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("narration unavailable: %v", e.Err)
	}
	return "narration unavailable"
}
func (e *NarrationUnavailableError) Unwrap() error { return e.Err }

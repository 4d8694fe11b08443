package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FlexTime is an instant that tolerates the encodings task documents have
// accumulated over time: RFC3339 strings, epoch numbers (seconds or
// milliseconds), and {seconds, nanoseconds} pairs. Whatever arrives, it is
// normalized to a single time.Time at the data-model boundary and always
// written back as RFC3339.
type FlexTime struct {
	time.Time
}

// Now returns the current instant as a FlexTime.
func Now() FlexTime {
	return FlexTime{Time: time.Now()}
}

// At wraps an existing time.Time.
func At(t time.Time) FlexTime {
	return FlexTime{Time: t}
}

// secondsPair mirrors the Firestore-style timestamp encoding.
type secondsPair struct {
	Seconds     int64 `json:"seconds" yaml:"seconds"`
	Nanoseconds int64 `json:"nanoseconds" yaml:"nanoseconds"`
}

// MarshalJSON writes the normalized RFC3339Nano form.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts any of the supported source encodings.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}

	switch s[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := parseTimeString(raw)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	case '{':
		var pair secondsPair
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("unsupported timestamp object: %w", err)
		}
		t.Time = time.Unix(pair.Seconds, pair.Nanoseconds)
		return nil
	default:
		var num float64
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("unsupported timestamp value %s: %w", s, err)
		}
		t.Time = epochToTime(num)
		return nil
	}
}

// MarshalYAML writes the normalized RFC3339Nano form.
func (t FlexTime) MarshalYAML() (interface{}, error) {
	return t.Format(time.RFC3339Nano), nil
}

// UnmarshalYAML accepts the same encodings as UnmarshalJSON.
func (t *FlexTime) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" || value.Value == "null" {
			t.Time = time.Time{}
			return nil
		}
		if num, err := strconv.ParseFloat(value.Value, 64); err == nil {
			t.Time = epochToTime(num)
			return nil
		}
		parsed, err := parseTimeString(value.Value)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	case yaml.MappingNode:
		var pair secondsPair
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("unsupported timestamp mapping: %w", err)
		}
		t.Time = time.Unix(pair.Seconds, pair.Nanoseconds)
		return nil
	default:
		return fmt.Errorf("unsupported timestamp node kind %d", value.Kind)
	}
}

func parseTimeString(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999Z0700", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	if num, err := strconv.ParseFloat(raw, 64); err == nil {
		return epochToTime(num), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp string %q", raw)
}

// epochToTime treats values of at least 1e12 as milliseconds since the epoch
// and smaller values as (possibly fractional) seconds.
func epochToTime(num float64) time.Time {
	if math.Abs(num) >= 1e12 {
		sec := int64(num) / 1000
		msec := int64(num) % 1000
		return time.Unix(sec, msec*int64(time.Millisecond))
	}
	sec, frac := math.Modf(num)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

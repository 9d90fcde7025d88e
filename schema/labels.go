package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LabelScores is a label-keyed score map that keeps its entry order. It
// encodes as a plain JSON object, which is the persisted history format.
type LabelScores []LabelScore

// Map drops the ordering. When labels repeat, the last entry wins.
func (ls LabelScores) Map() LabelScoreMap {
	out := make(LabelScoreMap, len(ls))
	for _, e := range ls {
		out[e.Label] = e.Score
	}
	return out
}

// MarshalJSON writes the entries as a JSON object in order.
func (ls LabelScores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range ls {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Score)
		if err != nil {
			return nil, fmt.Errorf("score of %q: %w", e.Label, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping document order. Values that are
// not numbers or numeric strings read as 0.
func (ls *LabelScores) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*ls = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("expected a JSON object")
	}

	var out LabelScores
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("score for %q: %w", label, err)
		}
		n, _ := ParseNumber(value)
		out = append(out, LabelScore{Label: label, Score: n})
	}

	tok, err = dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '}' {
		return errors.New("unterminated JSON object")
	}
	*ls = out
	return nil
}

// ParseLabelScores decodes a serialized score column.
func ParseLabelScores(raw string) (LabelScores, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty scores")
	}
	var ls LabelScores
	if err := ls.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, err
	}
	return ls, nil
}

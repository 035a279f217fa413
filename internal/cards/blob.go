package cards

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Cards is an ordered list of cards (hole cards or the board).
type Cards []Card

// Decode decodes the compact base64 card blob sent by the server. Each byte
// is one card; NoCard bytes are dropped and FaceDown bytes are kept.
func Decode(blob string) (Cards, error) {
	if blob == "" {
		return Cards{}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(blob, "="))
		if err != nil {
			return nil, fmt.Errorf("decode card blob: %w", err)
		}
	}

	out := make(Cards, 0, len(raw))
	for i, b := range raw {
		switch c := Card(b); {
		case c == NoCard:
			continue
		case c == FaceDown, c.Valid():
			out = append(out, c)
		default:
			return nil, fmt.Errorf("decode card blob: invalid card byte %d at %d", b, i)
		}
	}
	return out, nil
}

// Encode is the inverse of Decode.
func Encode(cs Cards) string {
	raw := make([]byte, len(cs))
	for i, c := range cs {
		raw[i] = byte(c)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// UnmarshalJSON accepts either a blob string or an explicit integer array.
func (cs *Cards) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*cs = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var blob string
		if err := json.Unmarshal(data, &blob); err != nil {
			return err
		}
		decoded, err := Decode(blob)
		if err != nil {
			return err
		}
		*cs = decoded
		return nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("cards: expected blob or int array: %w", err)
	}
	out := make(Cards, 0, len(ints))
	for _, v := range ints {
		c := Card(v)
		if c == NoCard {
			continue
		}
		if c != FaceDown && !c.Valid() {
			return fmt.Errorf("cards: invalid card %d", v)
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}

// Clone returns an independent copy.
func (cs Cards) Clone() Cards {
	if cs == nil {
		return nil
	}
	out := make(Cards, len(cs))
	copy(out, cs)
	return out
}

// Known reports whether every card is face-up.
func (cs Cards) Known() bool {
	for _, c := range cs {
		if !c.Valid() {
			return false
		}
	}
	return len(cs) > 0
}

// Strings returns the short forms.
func (cs Cards) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func (cs Cards) String() string {
	return strings.Join(cs.Strings(), " ")
}

// Package action recovers the single trailing instruction from a model
// reply and normalizes it into the fixed action vocabulary.
package action

import (
	"encoding/json"
	"strings"

	"github.com/josephgoksu/TaskTalk/models"
)

// Result pairs the user-visible reply text with the extracted action.
type Result struct {
	// DisplayText is the reply with the instruction span removed. The
	// instruction is never shown verbatim to the user.
	DisplayText string
	// Action is the normalized instruction; none when the reply carried no
	// valid instruction.
	Action models.Action
}

// Extract scans reply for a trailing structured instruction.
//
// The instruction is defined to be the final element of the reply, so the
// scan starts at the rightmost opening brace. When that brace sits inside an
// enclosing balanced object — a model that wrapped the instruction in a
// container — the scan widens outward so the wrapper is stripped from the
// display text along with the instruction, trying the widest candidate
// first. A malformed or unbalanced candidate degrades to the none action;
// the conversational text is still valid and shown to the user. Text from
// the chosen opening brace to the end of the reply is always stripped, even
// when parsing fails — a stray brace in prose loses its tail, which is
// accepted lossy behavior.
func Extract(reply string) Result {
	open := strings.LastIndex(reply, "{")
	if open == -1 {
		return Result{DisplayText: reply, Action: models.NoneAction()}
	}

	end := matchingBrace(reply, open)
	if end == -1 {
		return Result{DisplayText: strings.TrimSpace(reply[:open]), Action: models.NoneAction()}
	}

	starts := []int{open}
	for {
		prev := strings.LastIndex(reply[:starts[len(starts)-1]], "{")
		if prev == -1 {
			break
		}
		prevEnd := matchingBrace(reply, prev)
		if prevEnd < end {
			// Earlier brace is a sibling in prose (or unbalanced), not an
			// enclosing wrapper.
			break
		}
		starts = append(starts, prev)
		end = prevEnd
	}

	for i := len(starts) - 1; i >= 0; i-- {
		s := starts[i]
		e := matchingBrace(reply, s)
		if act, ok := parseInstruction(reply[s : e+1]); ok {
			return Result{DisplayText: strings.TrimSpace(reply[:s]), Action: act}
		}
	}

	outer := starts[len(starts)-1]
	return Result{DisplayText: strings.TrimSpace(reply[:outer]), Action: models.NoneAction()}
}

// matchingBrace returns the index where the brace depth opened at start
// returns to zero, or -1 if the text ends first.
func matchingBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// wrappedInstruction tolerates models that nest the instruction inside an
// enclosing container despite the prompt saying not to.
type wrappedInstruction struct {
	Action *models.Action `json:"action"`
}

// parseInstruction decodes raw into an action. Two deserialization attempts
// over the tagged-variant schema: the direct shape first, then unwrap one
// level. A failing parse gets one repair pass for common LLM syntax errors
// before giving up.
func parseInstruction(raw string) (models.Action, bool) {
	decoded, ok := decodeObject(raw)
	if !ok {
		repaired := repairJSON(raw)
		if repaired == raw {
			return models.Action{}, false
		}
		decoded, ok = decodeObject(repaired)
		if !ok {
			return models.Action{}, false
		}
	}

	if models.KnownActionType(decoded.direct.Type) {
		return decoded.direct, true
	}
	if decoded.wrapped.Action != nil && models.KnownActionType(decoded.wrapped.Action.Type) {
		return *decoded.wrapped.Action, true
	}
	return models.Action{}, false
}

type decodedInstruction struct {
	direct  models.Action
	wrapped wrappedInstruction
}

func decodeObject(raw string) (decodedInstruction, bool) {
	var out decodedInstruction
	if err := json.Unmarshal([]byte(raw), &out.direct); err != nil {
		return out, false
	}
	// The same bytes parsed once more for the wrapped shape; cheap because
	// instructions are tiny.
	_ = json.Unmarshal([]byte(raw), &out.wrapped)
	return out, true
}

package kakao

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// maxRequestBytes bounds a decoded skill request.
const maxRequestBytes = 1 << 20

// SkillRequest is the subset of a skill request the bot reads.
type SkillRequest struct {
	Action struct {
		ID     string         `json:"id"`
		Name   string         `json:"name"`
		Params map[string]any `json:"params"`
	} `json:"action"`
	Contexts []struct {
		Name   string `json:"name"`
		Params map[string]struct {
			Value         string `json:"value"`
			ResolvedValue string `json:"resolvedValue"`
		} `json:"params"`
	} `json:"contexts"`
	UserRequest struct {
		Utterance string `json:"utterance"`
		User      struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"userRequest"`
}

// DecodeSkillRequest reads a skill request. An empty body yields an empty
// request.
func DecodeSkillRequest(r io.Reader) (*SkillRequest, error) {
	var req SkillRequest
	if r == nil {
		return &req, nil
	}
	err := json.NewDecoder(io.LimitReader(r, maxRequestBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "kakao: decode skill request")
	}
	return &req, nil
}

// Param returns the action parameter name as a string, or "".
func (r *SkillRequest) Param(name string) string {
	if r == nil {
		return ""
	}
	switch v := r.Action.Params[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

// ContextParam returns a parameter of a named input context, or "".
func (r *SkillRequest) ContextParam(context, name string) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Contexts {
		if c.Name != context {
			continue
		}
		if p, ok := c.Params[name]; ok {
			if p.Value != "" {
				return p.Value
			}
			return p.ResolvedValue
		}
	}
	return ""
}

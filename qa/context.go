package qa

import (
	"github.com/andyjacy/aicommonplatform/qa/intent"
)

// BuildContext assembles the request context from user identity, intent, and
// caller-supplied extra fields. It is a pure function of its inputs and never
// fails.
//
// The well-known keys "department", "role" and "permissions" are lifted out
// of extra into dedicated fields; the full extra map is kept verbatim so
// downstream collaborators can read caller-specific fields the core does not
// know about.
func BuildContext(question, userID string, it intent.Intent, extra map[string]any) *Context {
	ctx := &Context{
		UserProfile: map[string]any{
			"user_id":       userID,
			"question_type": string(it),
		},
		Intent:      it,
		Permissions: []string{},
		Extra:       map[string]any{},
	}

	if extra == nil {
		return ctx
	}
	ctx.Extra = extra

	if dept, ok := extra["department"].(string); ok {
		ctx.Department = dept
	}
	if role, ok := extra["role"].(string); ok {
		ctx.Role = role
	}
	switch perms := extra["permissions"].(type) {
	case []string:
		ctx.Permissions = perms
	case []any:
		for _, p := range perms {
			if s, ok := p.(string); ok {
				ctx.Permissions = append(ctx.Permissions, s)
			}
		}
	}
	if ctx.Permissions == nil {
		ctx.Permissions = []string{}
	}

	return ctx
}

// Package authz layers admin and role checks on top of the authentication
// gate's resolved identity. Checks are pure post-conditions evaluated by an
// embedded OPA Rego policy; they never touch storage.
package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	"user-identity-service/internal/auth"
	"user-identity-service/pkg/autherr"
)

// Policy for identity authorization. admin holds when any admin role is
// present; role_allowed when the identity's role is in the allowed set.
const regoPolicy = `package identity.authz

default admin := false

admin if input.identity.admin_role != ""

default role_allowed := false

role_allowed if input.identity.admin_role in input.allowed
`

// Checker evaluates authorization post-conditions over resolved identities.
type Checker struct {
	query rego.PreparedEvalQuery
}

// NewChecker compiles the embedded policy once. Returns an error only when
// the policy fails to compile, which is a programming defect.
func NewChecker(ctx context.Context) (*Checker, error) {
	query, err := rego.New(
		rego.Query("data.identity.authz"),
		rego.Module("authz.rego", regoPolicy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}
	return &Checker{query: query}, nil
}

// RequireAdmin fails with AdminRequired when the identity has no admin role.
func (c *Checker) RequireAdmin(ctx context.Context, id *auth.Identity) error {
	doc, err := c.eval(ctx, id, nil)
	if err != nil {
		return autherr.Internal(err)
	}
	if doc["admin"] != true {
		return autherr.New(autherr.KindAdminRequired, "admin role required")
	}
	return nil
}

// RequireRole fails with InsufficientPermissions when the identity's admin
// role is not in the allowed set.
func (c *Checker) RequireRole(ctx context.Context, id *auth.Identity, allowed ...string) error {
	doc, err := c.eval(ctx, id, allowed)
	if err != nil {
		return autherr.Internal(err)
	}
	if doc["role_allowed"] != true {
		return autherr.New(autherr.KindInsufficientPermissions, "role not permitted")
	}
	return nil
}

func (c *Checker) eval(ctx context.Context, id *auth.Identity, allowed []string) (map[string]interface{}, error) {
	if id == nil {
		return nil, fmt.Errorf("no identity")
	}
	if allowed == nil {
		allowed = []string{}
	}
	input := map[string]interface{}{
		"identity": map[string]interface{}{
			"user_id":    id.UserID,
			"user_type":  id.UserType,
			"admin_role": id.AdminRole,
		},
		"allowed": allowed,
	}
	rs, err := c.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, fmt.Errorf("empty policy result")
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected policy result shape")
	}
	return doc, nil
}

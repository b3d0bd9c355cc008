// Package policyopa evaluates an optional deployment-provided rego policy on
// top of the built-in permission checks. The policy contributes deny rules
// only; it can never grant access the permission gate refused.
package policyopa

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.library.authz.deny"

type Engine struct {
	query rego.PreparedEvalQuery
	path  string
}

// Input is the document handed to the policy for each authorization check.
type Input struct {
	Kind        string   `json:"kind"`
	Role        string   `json:"role,omitempty"`
	TenantID    string   `json:"tenant_id,omitempty"`
	Permissions []string `json:"permissions"`
	Required    []string `json:"required"`
	Combinator  string   `json:"combinator"`
}

func NewEngineFromPath(ctx context.Context, policyPath string) (*Engine, error) {
	if policyPath == "" {
		return nil, errors.New("policy path is required")
	}
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{policyPath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare auth policy: %w", err)
	}
	return &Engine{query: prepared, path: policyPath}, nil
}

// Deny returns the sorted deny reasons the policy produced for the input.
// An empty slice means the policy has no objection.
func (e *Engine) Deny(ctx context.Context, input Input) ([]string, error) {
	if e == nil {
		return nil, errors.New("policy engine is nil")
	}
	if input.Permissions == nil {
		input.Permissions = []string{}
	}
	if input.Required == nil {
		input.Required = []string{}
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil, nil
	}
	raw, ok := results[0].Expressions[0].Value.([]any)
	if !ok {
		return nil, errors.New("auth policy deny is not a set of strings")
	}
	reasons := make([]string, 0, len(raw))
	for _, item := range raw {
		reason, ok := item.(string)
		if !ok {
			return nil, errors.New("auth policy deny contains a non-string entry")
		}
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	return reasons, nil
}

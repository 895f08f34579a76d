// Package policy evaluates collection-access policy for the chat-history and
// message-list APIs.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.collection_policy.decision"),
		rego.Module("collection_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input describes one collection access.
type Input struct {
	Collection string `json:"collection"`
	Operation  string `json:"operation"`
}

// Allow reports whether the given collection access is permitted.
func (e *Engine) Allow(ctx context.Context, input Input) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; an empty result means it failed to.
		return false, fmt.Errorf("policy returned no decision")
	}

	decision, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return false, fmt.Errorf("policy returned unexpected decision type %T", results[0].Expressions[0].Value)
	}

	return decision == "allow", nil
}

// DefaultPolicy is the default collection-access policy: any collection may be
// read or written except reserved names used for internal bookkeeping.
const DefaultPolicy = `
package collection_policy

default decision = "allow"

# Reserved collections are never served through the public API.
decision = "deny" {
	startswith(input.collection, "_")
}

decision = "deny" {
	input.collection == "users"
}
`

package policy

import (
	"context"
	"fmt"
	"strings"

	"lifeops/internal/auth/domain/repository"

	"github.com/google/cel-go/cel"
)

// CELSignupPolicy decides sign-ups with a CEL expression over email, name and provider
type CELSignupPolicy struct {
	expression string
	program    cel.Program
}

var _ repository.SignupPolicy = (*CELSignupPolicy)(nil)

// NewCELSignupPolicy compiles expression; it must evaluate to a bool
func NewCELSignupPolicy(expression string) (*CELSignupPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("email", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("provider", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("CEL sign-up policy must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return &CELSignupPolicy{expression: expression, program: program}, nil
}

// New returns the CEL policy for expression, or AllowAll when it is blank
func New(expression string) (repository.SignupPolicy, error) {
	if strings.TrimSpace(expression) == "" {
		return AllowAll{}, nil
	}
	return NewCELSignupPolicy(expression)
}

func (p *CELSignupPolicy) Allow(ctx context.Context, subject repository.SignupSubject) (bool, error) {
	out, _, err := p.program.ContextEval(ctx, map[string]interface{}{
		"email":    subject.Email,
		"name":     subject.Name,
		"provider": subject.Provider,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean value")
	}
	return allowed, nil
}

// String returns the source expression
func (p *CELSignupPolicy) String() string { return p.expression }

// AllowAll lets every sign-up through
type AllowAll struct{}

func (AllowAll) Allow(context.Context, repository.SignupSubject) (bool, error) { return true, nil }

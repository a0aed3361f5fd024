package calc

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Reason classifies a failed evaluation
type Reason string

const (
	// ReasonInvalidChars means the input contained a character outside the allow-list
	ReasonInvalidChars Reason = "invalid_chars"

	// ReasonDivisionByZero means a divisor evaluated to zero
	ReasonDivisionByZero Reason = "division_by_zero"

	// ReasonGeneric covers every other parse or compute failure
	ReasonGeneric Reason = "generic_error"
)

// User-facing failure messages
const (
	MessageInvalidChars   = "Invalid characters in expression"
	MessageDivisionByZero = "Cannot divide by zero"
	MessageGeneric        = "Could not understand or calculate that expression"
)

var (
	// ErrInvalidCharacters is returned by Result.Err for ReasonInvalidChars
	ErrInvalidCharacters = errors.New("invalid characters in expression")

	// ErrDivisionByZero is returned by Result.Err for ReasonDivisionByZero
	ErrDivisionByZero = errors.New("cannot divide by zero")

	// ErrEvaluation is returned by Result.Err for ReasonGeneric
	ErrEvaluation = errors.New("could not evaluate expression")
)

// Result is the outcome of evaluating one expression
type Result struct {
	OK      bool   `json:"ok"`
	Value   string `json:"value,omitempty"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Err returns nil for a successful result, or the sentinel error for its reason
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	switch r.Reason {
	case ReasonInvalidChars:
		return ErrInvalidCharacters
	case ReasonDivisionByZero:
		return ErrDivisionByZero
	default:
		return ErrEvaluation
	}
}

func success(value string) Result {
	return Result{OK: true, Value: value}
}

func failure(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

// Evaluator evaluates arithmetic expressions.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	maxDepth int
	logger   *zap.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithMaxDepth sets the maximum nesting of parentheses and unary signs
func WithMaxDepth(depth int) Option {
	return func(e *Evaluator) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// NewEvaluator creates a new evaluator. A nil logger disables diagnostics.
func NewEvaluator(logger *zap.Logger, opts ...Option) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{
		maxDepth: DefaultMaxDepth,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxDepth returns the configured nesting bound
func (e *Evaluator) MaxDepth() int {
	return e.maxDepth
}

// Evaluate validates and evaluates expression
func (e *Evaluator) Evaluate(expression string) (result Result) {
	if !validChars(expression) {
		return failure(ReasonInvalidChars, MessageInvalidChars)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logFailure(expression, fmt.Errorf("panic during evaluation: %v", r))
			result = failure(ReasonGeneric, MessageGeneric)
		}
	}()

	value, err := e.compute(expression)
	if err != nil {
		if errors.Is(err, errDivideByZero) {
			return failure(ReasonDivisionByZero, MessageDivisionByZero)
		}
		e.logFailure(expression, err)
		return failure(ReasonGeneric, MessageGeneric)
	}
	return success(value)
}

func (e *Evaluator) compute(expression string) (string, error) {
	tree, err := parse(expression, e.maxDepth)
	if err != nil {
		return "", err
	}
	n, err := tree.eval()
	if err != nil {
		return "", err
	}
	return n.Format()
}

func (e *Evaluator) logFailure(expression string, err error) {
	e.logger.Error("failed to evaluate expression",
		zap.String("expression", expression),
		zap.Error(err),
	)
}

package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
)

// DefaultMaxDepth bounds the nesting of queries run by an Executor.
const DefaultMaxDepth = 5

// ExecuteQuery executes a GraphQL query against a schema
func ExecuteQuery(query string, schema graphql.Schema) *graphql.Result {
	return ExecuteQueryWithVariables(query, schema, nil)
}

// ExecuteQueryWithVariables executes a GraphQL query with variables
func ExecuteQueryWithVariables(query string, schema graphql.Schema, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
	})
}

// Executor runs depth-limited queries against one frozen model and records
// their outcome.
type Executor struct {
	schema   graphql.Schema
	maxDepth int
	logger   logging.Logger
	metrics  *metrics.Registry
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxDepth sets the maximum query depth. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Executor) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(e *Executor) { e.metrics = reg }
}

// NewExecutor generates the schema of model, which must be frozen.
func NewExecutor(model *bondgraph.Model, opts ...Option) (*Executor, error) {
	schema, err := GenerateSchema(model)
	if err != nil {
		return nil, err
	}
	e := &Executor{schema: schema, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrNop(e.logger).With(logging.Component("graphql"), logging.ModelURI(model.URI()))
	return e, nil
}

// Schema returns the generated schema.
func (e *Executor) Schema() graphql.Schema { return e.schema }

// Execute validates the query depth and runs the query.
func (e *Executor) Execute(ctx context.Context, query string, variables map[string]any) *graphql.Result {
	start := time.Now()

	var result *graphql.Result
	if err := ValidateQueryDepth(query, e.maxDepth); err != nil {
		result = &graphql.Result{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}}
	} else {
		result = graphql.Do(graphql.Params{
			Schema:         e.schema,
			RequestString:  query,
			VariableValues: variables,
			Context:        ctx,
		})
	}

	elapsed := time.Since(start)
	err := resultError(result)
	e.metrics.RecordQuery(elapsed, err)
	if err != nil {
		e.logger.Warn("query failed", logging.Error(err), logging.Latency(elapsed))
	} else {
		e.logger.Debug("query executed", logging.Latency(elapsed))
	}
	return result
}

func resultError(r *graphql.Result) error {
	if !r.HasErrors() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, fe := range r.Errors {
		errs[i] = errors.New(fe.Message)
	}
	return errors.Join(errs...)
}

package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	einoschema "github.com/cloudwego/eino/schema"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
	schemax "github.com/tanpawarit/insurance-analyst/agent/schema"
	translatorx "github.com/tanpawarit/insurance-analyst/agent/translator"
)

const (
	// ToolName is the name the conversational loop binds the tool under.
	ToolName = "insurance_analytics"

	toolDescription = `Query insurance database to answer questions about customers, policies, and claims.
This tool can execute SQL queries on the insurance database containing:
- customers: customer information (customer_id, first_name, last_name, email, phone, date_of_birth, address, city, state, zip_code)
- policies: insurance policies (policy_id, customer_id, policy_type, coverage_amount, premium_amount, start_date, end_date, status)
- claims: insurance claims (claim_id, policy_id, claim_amount, claim_date, claim_status, claim_type, description)

Input should be a natural language question about insurance data.
Examples:
- "How many customers do we have?"
- "What is the total coverage amount for auto policies?"
- "Show me all pending claims"
- "Which customer has the highest claim amount?"
- "What are the most common claim types?"`
)

// Opener opens the store at the given path. Swappable in tests.
type Opener func(path string) (*sql.DB, error)

// Tool answers natural-language questions against the insurance store.
// Every invocation translates the question, runs the resulting SELECT
// on a fresh connection, and renders a bounded table. The result is
// always text: failures are reported inline so the conversational loop
// receives a turn-ending answer instead of a raised error.
type Tool struct {
	dbPath     string
	translator *translatorx.Translator
	trace      contractx.TraceSink
	open       Opener
}

type Option func(*Tool)

// WithTraceSink enables span reporting. A nil sink leaves tracing off.
func WithTraceSink(sink contractx.TraceSink) Option {
	return func(t *Tool) {
		t.trace = sink
	}
}

// WithOpener replaces the store opener.
func WithOpener(open Opener) Option {
	return func(t *Tool) {
		if open != nil {
			t.open = open
		}
	}
}

func New(dbPath string, tr *translatorx.Translator, opts ...Option) (*Tool, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("%w: db path is required", contractx.ErrValidation)
	}
	if tr == nil {
		return nil, fmt.Errorf("%w: translator is required", contractx.ErrValidation)
	}

	t := &Tool{
		dbPath:     dbPath,
		translator: tr,
		open:       openDuckDB,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

func openDuckDB(path string) (*sql.DB, error) {
	return sql.Open("duckdb", path)
}

// Execute runs one question end to end and returns the report text.
// It never returns an error: store-missing, translation, and execution
// failures are all rendered as text.
func (t *Tool) Execute(ctx context.Context, question string) string {
	started := time.Now()
	report := t.execute(ctx, question)
	t.observe(ctx, question, report, started)
	return report
}

func (t *Tool) execute(ctx context.Context, question string) string {
	if _, err := os.Stat(t.dbPath); errors.Is(err, os.ErrNotExist) {
		queriesTotal.WithLabelValues(outcomeStoreMissing).Inc()
		return fmt.Sprintf("Database file '%s' not found. Please run the data generation script first.", t.dbPath)
	}

	statement, err := t.translator.Translate(ctx, question, schemax.Describe())
	if err != nil {
		queriesTotal.WithLabelValues(outcomeTranslationError).Inc()
		log.Warn().Err(err).Str("question", question).Msg("sql translation failed")
		return fmt.Sprintf("Error executing query: %s", err)
	}

	columns, rows, err := t.runStatement(ctx, statement)
	if err != nil {
		queriesTotal.WithLabelValues(outcomeExecutionError).Inc()
		log.Warn().Err(err).Str("statement", statement).Msg("query execution failed")
		return fmt.Sprintf("Error executing query: %s", err)
	}

	if len(rows) == 0 {
		queriesTotal.WithLabelValues(outcomeNoData).Inc()
		return noDataMessage
	}

	queriesTotal.WithLabelValues(outcomeOK).Inc()
	resultRows.Observe(float64(len(rows)))
	return formatReport(question, statement, columns, rows)
}

// runStatement opens the store, runs the single statement, and drains
// the full result set. The connection never outlives the call.
func (t *Tool) runStatement(ctx context.Context, statement string) ([]string, [][]any, error) {
	db, err := t.open(t.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	collected := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		collected = append(collected, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, collected, nil
}

func (t *Tool) observe(ctx context.Context, question string, report string, started time.Time) {
	if t.trace == nil {
		return
	}
	span := contractx.Span{
		Name:      ToolName,
		Input:     question,
		Output:    report,
		StartedAt: started,
		EndedAt:   time.Now(),
		Metadata:  map[string]any{"db_path": t.dbPath},
	}
	if strings.HasPrefix(report, "Error executing query:") {
		span.Error = report
	}
	t.trace.Observe(ctx, span)
}

type toolInput struct {
	Question string `json:"question"`
}

var _ tool.InvokableTool = (*Tool)(nil)

func (t *Tool) Info(ctx context.Context) (*einoschema.ToolInfo, error) {
	return &einoschema.ToolInfo{
		Name: ToolName,
		Desc: toolDescription,
		ParamsOneOf: einoschema.NewParamsOneOfByParams(map[string]*einoschema.ParameterInfo{
			"question": {
				Type:     einoschema.String,
				Desc:     "Natural language question about insurance data",
				Required: true,
			},
		}),
	}, nil
}

func (t *Tool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input toolInput
	if raw := strings.TrimSpace(argumentsInJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return "", fmt.Errorf("%w: invalid tool arguments: %v", contractx.ErrValidation, err)
		}
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", contractx.ErrValidation)
	}
	return t.Execute(ctx, question), nil
}

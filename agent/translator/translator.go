package translator

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
)

const promptTemplate = `You are a SQL expert. Given the following database schema and a natural language question, generate a SQL query to answer the question.

Database Schema:
%s

Rules:
1. Only use tables and columns that exist in the schema
2. Use proper SQL syntax for DuckDB
3. Use appropriate JOINs when data from multiple tables is needed
4. For date comparisons, use DuckDB date functions like YEAR(), MONTH(), etc.
5. Use COALESCE() for handling NULL values in aggregations
6. Limit results to 20 rows unless specifically asked for more
7. Use descriptive column aliases
8. Return only the SQL query, no explanation

Question: %s

SQL Query:`

// Translator converts a natural-language question into a single
// read-only SQL statement through a completion capability.
type Translator struct {
	completer contractx.Completer
}

func New(completer contractx.Completer) (*Translator, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer is required", contractx.ErrValidation)
	}
	return &Translator{completer: completer}, nil
}

// Translate renders the SQL generation prompt, invokes the completion
// capability once, and returns the cleaned statement. The statement is
// guaranteed to start with SELECT; anything else fails with
// ErrNonSelectStatement. Completion failures or empty output fail with
// ErrTranslationFailure. There is no retry.
func (t *Translator) Translate(ctx context.Context, question string, schemaText string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, schemaText, question)

	raw, err := t.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrTranslationFailure, err)
	}

	statement := StripSQLFence(raw)
	if statement == "" {
		return "", fmt.Errorf("%w: model returned empty statement", contractx.ErrTranslationFailure)
	}
	if !startsWithSelect(statement) {
		return "", fmt.Errorf("%w: %q", contractx.ErrNonSelectStatement, firstToken(statement))
	}

	return statement, nil
}

// StripSQLFence removes a leading ```sql (or bare ```) marker and a
// trailing ``` marker, then trims whitespace. Applying it to already
// stripped text is a no-op.
func StripSQLFence(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```sql") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// startsWithSelect checks only the leading token; it does not parse the
// statement, so SELECTs that smuggle mutating clauses inside CTEs are
// not caught here.
func startsWithSelect(statement string) bool {
	return strings.EqualFold(firstToken(statement), "select")
}

func firstToken(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

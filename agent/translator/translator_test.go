package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const schemaText = "1. customers\n- customer_id (INTEGER, PRIMARY KEY)"

func TestTranslateReturnsCleanStatement(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "```sql\nSELECT COUNT(*) FROM customers\n```"}
	tr, err := New(fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	statement, err := tr.Translate(context.Background(), "How many customers?", schemaText)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if statement != "SELECT COUNT(*) FROM customers" {
		t.Fatalf("unexpected statement: %q", statement)
	}
}

func TestTranslatePromptEmbedsQuestionAndSchema(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "SELECT 1"}
	tr, _ := New(fake)

	if _, err := tr.Translate(context.Background(), "Show me all pending claims", schemaText); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if len(fake.prompts) != 1 {
		t.Fatalf("expected one completion call, got %d", len(fake.prompts))
	}
	prompt := fake.prompts[0]
	if !strings.Contains(prompt, "Show me all pending claims") {
		t.Fatal("prompt is missing the question")
	}
	if !strings.Contains(prompt, schemaText) {
		t.Fatal("prompt is missing the schema text")
	}
	if !strings.Contains(prompt, "Limit results to 20 rows") {
		t.Fatal("prompt is missing the row cap rule")
	}
}

func TestTranslateRejectsNonSelect(t *testing.T) {
	t.Parallel()

	cases := []string{
		"DELETE FROM claims",
		"UPDATE policies SET status = 'expired'",
		"drop table customers",
		"WITH doomed AS (DELETE FROM claims RETURNING *) SELECT * FROM doomed",
	}
	for _, response := range cases {
		fake := &fakeCompleter{response: response}
		tr, _ := New(fake)
		_, err := tr.Translate(context.Background(), "question", schemaText)
		if !errors.Is(err, contractx.ErrNonSelectStatement) {
			t.Fatalf("response %q: expected ErrNonSelectStatement, got %v", response, err)
		}
	}
}

func TestTranslateLowercaseSelectAccepted(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "select policy_type, count(*) from policies group by policy_type"}
	tr, _ := New(fake)
	statement, err := tr.Translate(context.Background(), "policies by type", schemaText)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if !strings.HasPrefix(statement, "select") {
		t.Fatalf("unexpected statement: %q", statement)
	}
}

func TestTranslateWrapsCompletionFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{err: errors.New("deployment unreachable")}
	tr, _ := New(fake)
	_, err := tr.Translate(context.Background(), "question", schemaText)
	if !errors.Is(err, contractx.ErrTranslationFailure) {
		t.Fatalf("expected ErrTranslationFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "deployment unreachable") {
		t.Fatalf("wrapped error lost cause: %v", err)
	}
}

func TestTranslateEmptyResponse(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "```sql\n```"}
	tr, _ := New(fake)
	_, err := tr.Translate(context.Background(), "question", schemaText)
	if !errors.Is(err, contractx.ErrTranslationFailure) {
		t.Fatalf("expected ErrTranslationFailure, got %v", err)
	}
}

func TestStripSQLFenceIdempotent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"```sql\nSELECT 1\n```":  "SELECT 1",
		"```\nSELECT 1\n```":     "SELECT 1",
		"SELECT 1":               "SELECT 1",
		"  SELECT 1  ":           "SELECT 1",
		"```sql\nSELECT 1":       "SELECT 1",
		"SELECT fee FROM t\n```": "SELECT fee FROM t",
	}
	for input, want := range cases {
		once := StripSQLFence(input)
		if once != want {
			t.Fatalf("StripSQLFence(%q) = %q, want %q", input, once, want)
		}
		if twice := StripSQLFence(once); twice != once {
			t.Fatalf("StripSQLFence not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}

func TestNewRequiresCompleter(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

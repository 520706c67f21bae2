package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	a2ax "github.com/tanpawarit/insurance-analyst/a2a"
	analystx "github.com/tanpawarit/insurance-analyst/agent/analyst"
	analyticsx "github.com/tanpawarit/insurance-analyst/agent/analytics"
	translatorx "github.com/tanpawarit/insurance-analyst/agent/translator"
	datagenx "github.com/tanpawarit/insurance-analyst/datagen"
	azurex "github.com/tanpawarit/insurance-analyst/pkg/azure"
	configx "github.com/tanpawarit/insurance-analyst/pkg/config"
	langfusex "github.com/tanpawarit/insurance-analyst/pkg/langfuse"
	logx "github.com/tanpawarit/insurance-analyst/pkg/logger"
)

const (
	defaultDBPath = "insurance_data.db"
	defaultHost   = "0.0.0.0"
	defaultPort   = 5050
)

var exampleQuestions = []string{
	"How many customers do we have?",
	"What is the total coverage amount for auto policies?",
	"Show me all pending claims",
	"Which customer has the highest claim amount?",
	"What are the most common claim types?",
	"What is our profit analysis by policy type?",
	"Show me the loss ratio for each policy type",
	"Who are the customers with the most policies?",
	"How many claims were filed this year?",
	"What is the average premium by policy type?",
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "insurance-analyst",
		Short:         "Natural language analytics over an insurance portfolio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				logx.Init()
				return
			}
			logx.Init(*logCfg)
		},
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newChatCmd(),
		newDemoCmd(),
		newServeCmd(),
		newAskCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildAnalyst wires the full answer path: translator over the Azure
// completer, the analytics tool over the store, optional Langfuse
// tracing, and the tool-calling loop on top.
func buildAnalyst(ctx context.Context, dbPath string) (*analystx.Analyst, error) {
	azureCfg, err := configx.New[azurex.Config]("AZURE_OPENAI")
	if err != nil {
		return nil, fmt.Errorf("load azure config: %w", err)
	}
	if err := azureCfg.Validate(); err != nil {
		return nil, err
	}

	completer, err := azurex.NewCompleter(*azureCfg)
	if err != nil {
		return nil, err
	}

	translator, err := translatorx.New(completer)
	if err != nil {
		return nil, err
	}

	var toolOpts []analyticsx.Option
	if lfCfg, err := configx.New[langfusex.Config]("LANGFUSE"); err == nil && lfCfg.Enabled() {
		sink, err := langfusex.NewClient(*lfCfg)
		if err != nil {
			log.Warn().Err(err).Msg("langfuse configured but unusable, tracing disabled")
		} else {
			toolOpts = append(toolOpts, analyticsx.WithTraceSink(sink))
			log.Info().Msg("langfuse tracing enabled")
		}
	}

	analyticsTool, err := analyticsx.New(dbPath, translator, toolOpts...)
	if err != nil {
		return nil, err
	}

	chatModel, err := azureCfg.New(ctx)
	if err != nil {
		return nil, err
	}

	return analystx.New(ctx, chatModel, analyticsTool)
}

func newGenerateCmd() *cobra.Command {
	var (
		customers int
		dbPath    string
		seed      uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic insurance portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fmt.Println("Generating synthetic insurance data...")
			fmt.Printf("Customers: %d\n", customers)
			fmt.Printf("Database: %s\n", dbPath)
			fmt.Printf("Random seed: %d\n", seed)

			gen := datagenx.New(seed)
			customerRows := gen.Customers(customers)
			policyRows := gen.Policies(customerRows)
			claimRows := gen.Claims(policyRows)

			store, err := datagenx.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Init(ctx); err != nil {
				return err
			}
			if err := store.Reset(ctx); err != nil {
				return err
			}
			if err := store.Load(ctx, customerRows, policyRows, claimRows); err != nil {
				return err
			}

			summary, err := store.Summarize(ctx)
			if err != nil {
				return err
			}
			printSummary(summary)

			fmt.Printf("\nData generation complete! Database saved to: %s\n", dbPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&customers, "customers", 1000, "number of customers to generate")
	cmd.Flags().StringVar(&dbPath, "db-path", defaultDBPath, "path to the portfolio database file")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "random seed for reproducible data")
	return cmd
}

func printSummary(summary datagenx.Summary) {
	fmt.Println("\n=== DATA GENERATION SUMMARY ===")
	fmt.Printf("Customers generated: %d\n", summary.Customers)

	fmt.Println("\nPolicies by type:")
	totalPolicies := 0
	for _, policyType := range []string{"auto", "home", "life", "travel"} {
		if count, ok := summary.PoliciesByType[policyType]; ok {
			fmt.Printf("  %s: %d\n", policyType, count)
			totalPolicies += count
		}
	}
	fmt.Printf("  Total: %d\n", totalPolicies)

	fmt.Println("\nClaims by status:")
	totalClaims := 0
	for _, status := range []string{"approved", "denied", "pending", "processing"} {
		if count, ok := summary.ClaimsByStatus[status]; ok {
			fmt.Printf("  %s: %d\n", status, count)
			totalClaims += count
		}
	}
	fmt.Printf("  Total: %d\n", totalClaims)

	fmt.Println("\nFinancial Summary:")
	fmt.Printf("  Total Coverage: $%.2f\n", summary.TotalCoverage)
	fmt.Printf("  Total Premiums: $%.2f\n", summary.TotalPremiums)
	fmt.Printf("  Total Claims: $%.2f\n", summary.TotalClaims)
}

func newChatCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session with the analyst",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			analyst, err := buildAnalyst(ctx, dbPath)
			if err != nil {
				return err
			}

			fmt.Println(strings.Repeat("=", 60))
			fmt.Println("INSURANCE ANALYST AGENT")
			fmt.Println(strings.Repeat("=", 60))
			fmt.Println("Ask me anything about your insurance data!")
			fmt.Println("Type 'quit', 'exit', or 'bye' to end the conversation.")

			fmt.Println("\nExample questions you can ask:")
			for i, example := range exampleQuestions {
				fmt.Printf("  %2d. %s\n", i+1, example)
			}
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("Your question: ")
				if !scanner.Scan() {
					break
				}
				question := strings.TrimSpace(scanner.Text())

				switch strings.ToLower(question) {
				case "quit", "exit", "bye", "q":
					fmt.Println("\nThank you for using Insurance Analyst Agent!")
					return nil
				case "":
					fmt.Println("Please enter a question about the insurance data.")
					continue
				}

				fmt.Printf("\nAnalyzing: %s\n", question)
				answer, err := analyst.Ask(ctx, question)
				if err != nil {
					fmt.Printf("Error processing your question: %v\n", err)
					fmt.Println("Please try rephrasing your question or ask something else.")
				} else {
					fmt.Printf("\nAnswer:\n%s\n", answer)
				}
				fmt.Println("\n" + strings.Repeat("=", 60))
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", defaultDBPath, "path to the portfolio database file")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a fixed set of demo questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			analyst, err := buildAnalyst(ctx, dbPath)
			if err != nil {
				return err
			}

			demoQuestions := []string{
				"How many customers do we have?",
				"What is the total coverage amount by policy type?",
				"Show me all pending claims",
				"What is our profit analysis by policy type?",
				"Who are the top 5 customers with the highest premiums?",
			}

			fmt.Println(strings.Repeat("=", 60))
			fmt.Println("INSURANCE ANALYST AGENT - DEMO MODE")
			fmt.Println(strings.Repeat("=", 60))

			for i, question := range demoQuestions {
				fmt.Printf("\nDemo Query %d: %s\n", i+1, question)
				answer, err := analyst.Ask(ctx, question)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
				} else {
					fmt.Printf("Answer: %s\n", answer)
				}
				fmt.Println("\n" + strings.Repeat("=", 60))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", defaultDBPath, "path to the portfolio database file")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		dbPath string
		host   string
		port   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the analyst over the agent-to-agent protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			analyst, err := buildAnalyst(ctx, dbPath)
			if err != nil {
				return err
			}

			card := a2ax.NewCard(fmt.Sprintf("http://%s:%d", host, port))
			server, err := a2ax.NewServer(card, analyst)
			if err != nil {
				return err
			}

			fmt.Printf("Starting agent endpoint on %s:%d\n", host, port)
			return server.Serve(ctx, fmt.Sprintf("%s:%d", host, port))
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", defaultDBPath, "path to the portfolio database file")
	cmd.Flags().StringVar(&host, "host", defaultHost, "host to bind")
	cmd.Flags().IntVar(&port, "port", defaultPort, "port to listen on")
	return cmd
}

func newAskCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Interactive client for a remote analyst endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			url := fmt.Sprintf("http://%s:%d", host, port)
			fmt.Printf("Connecting to agent at %s\n", url)

			client, err := a2ax.NewClient(url, 2*time.Minute)
			if err != nil {
				return err
			}

			card, err := client.FetchCard(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Connected to %s v%s\n", card.Name, card.Version)

			fmt.Println("\nType 'exit' or 'quit' to end.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("Your question: ")
				if !scanner.Scan() {
					break
				}
				question := strings.TrimSpace(scanner.Text())

				switch strings.ToLower(question) {
				case "", "exit", "quit", "q", "bye":
					fmt.Println("Goodbye!")
					return nil
				}

				answer, err := client.Send(ctx, question)
				if err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}
				fmt.Printf("Answer: %s\n\n", answer)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "remote agent host")
	cmd.Flags().IntVar(&port, "port", defaultPort, "remote agent port")
	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agora-agent/internal/agent/curator"
	"github.com/agora-agent/internal/agent/scout"
	"github.com/agora-agent/internal/ai"
	"github.com/agora-agent/internal/config"
	"github.com/agora-agent/internal/content"
	"github.com/agora-agent/internal/generation"
	"github.com/agora-agent/internal/models"
	"github.com/agora-agent/internal/storage"
	"github.com/agora-agent/internal/storage/sqlite"
	"github.com/agora-agent/pkg/logger"
	"github.com/agora-agent/pkg/ratelimit"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
	repo    storage.Repository
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agora-agent",
		Short: "Editorial agent for a multi-persona philosophy publication",
		Long: `An editorial pipeline that ingests news, scores articles for
philosophical relevance, and generates persona-voiced content for review.`,
		PersistentPreRunE: initializeApp,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(scoutCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(candidatesCmd())
	rootCmd.AddCommand(personasCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(debatesCmd())
	rootCmd.AddCommand(agoraCmd())
	rootCmd.AddCommand(synthesizeCmd())
	rootCmd.AddCommand(reviewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	// Initialize storage
	repo, err = sqlite.New(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// buildCurator wires the generation stack for commands that create content
func buildCurator() (*curator.Agent, *generation.Orchestrator) {
	limiter := ratelimit.NewLimiter(cfg.RateLimit.AnthropicRequestsPerMinute, cfg.RateLimit.FeedRequestsPerSecond)
	aiClient := ai.NewClient(cfg.Anthropic, limiter, log)
	orchestrator := generation.NewOrchestrator(aiClient, repo, cfg.Generation.ShortMaxTokens, log)
	return curator.NewAgent(orchestrator, repo, cfg.Generation, log), orchestrator
}

// buildScout wires the ingestion stack
func buildScout() *scout.Agent {
	limiter := ratelimit.NewLimiter(cfg.RateLimit.AnthropicRequestsPerMinute, cfg.RateLimit.FeedRequestsPerSecond)
	aiClient := ai.NewClient(cfg.Anthropic, limiter, log)
	return scout.NewAgent(repo, scout.NewFeedFetcher(), aiClient, limiter, cfg.Scout, log)
}

// resolvePersona accepts a persona name or numeric ID
func resolvePersona(ctx context.Context, ref string) (*models.Persona, error) {
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		return repo.GetPersonaByID(ctx, uint(id))
	}
	return repo.GetPersonaByName(ctx, ref)
}

// ============ SCOUT COMMANDS ============

func scoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scout",
		Short: "News ingestion and scoring commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Fetch all active feeds and ingest new candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			agent := buildScout()

			if added, err := agent.SeedSources(ctx); err != nil {
				return err
			} else if added > 0 {
				fmt.Printf("Seeded %d sources from config\n", added)
			}

			report, err := agent.FetchAll(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Fetched %d sources, added %d candidates\n", report.SourcesFetched, report.CandidatesAdded)
			for _, srcErr := range report.Errors {
				fmt.Printf("  source %s failed: %v\n", srcErr.SourceName, srcErr.Err)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "score",
		Short: "Score unscored candidates for philosophical relevance",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildScout().ScoreUnscored(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Scored %d candidates (%d failed)\n", report.Scored, report.Failed)
			return nil
		},
	})

	return cmd
}

// ============ SOURCE COMMANDS ============

func sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "News source management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured news sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := repo.ListNewsSources(context.Background(), false)
			if err != nil {
				return err
			}
			for _, s := range sources {
				state := "active"
				if !s.Active {
					state = "disabled"
				}
				fmt.Printf("[%d] %s (%s) %s — %s\n", s.ID, s.Name, s.Category, state, s.FeedURL)
			}
			return nil
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a news source",
	}
	name := addCmd.Flags().String("name", "", "source display name")
	url := addCmd.Flags().String("url", "", "RSS feed URL")
	category := addCmd.Flags().String("category", "", "source category")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("url")
	addCmd.RunE = func(cmd *cobra.Command, args []string) error {
		source := &models.NewsSource{
			Name:     *name,
			FeedURL:  *url,
			Category: *category,
			Active:   true,
		}
		if err := repo.CreateNewsSource(context.Background(), source); err != nil {
			return err
		}
		fmt.Printf("Added source %d: %s\n", source.ID, source.Name)
		return nil
	}
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "disable <url>",
		Short: "Disable a news source by feed URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			source, err := repo.GetNewsSourceByURL(ctx, args[0])
			if err != nil {
				return err
			}
			if source == nil {
				return fmt.Errorf("no source with URL %s", args[0])
			}
			source.Active = false
			if err := repo.UpdateNewsSource(ctx, source); err != nil {
				return err
			}
			fmt.Printf("Disabled source %d: %s\n", source.ID, source.Name)
			return nil
		},
	})

	return cmd
}

// ============ CANDIDATE COMMANDS ============

func candidatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Article candidate review",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List article candidates",
	}
	statusFlag := listCmd.Flags().String("status", "scored", "filter by status (new, scored, approved, dismissed, used)")
	limitFlag := listCmd.Flags().Int("limit", 20, "max candidates to show")
	listCmd.RunE = func(cmd *cobra.Command, args []string) error {
		filter := storage.DefaultCandidateFilter()
		filter.Limit = *limitFlag
		if *statusFlag != "" {
			status := models.CandidateStatus(*statusFlag)
			filter.Status = &status
		}
		candidates, err := repo.ListCandidates(context.Background(), filter)
		if err != nil {
			return err
		}
		for _, c := range candidates {
			sourceName := ""
			if c.Source != nil {
				sourceName = c.Source.Name
			}
			fmt.Printf("[%d] %.0f %-12s %s (%s)\n", c.ID, c.Score, c.Category, c.Title, sourceName)
		}
		return nil
	}
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Shortlist a scored candidate for content generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			agent, _ := buildCurator()
			if err := agent.ApproveCandidate(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Candidate %d approved\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss a scored candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			agent, _ := buildCurator()
			if err := agent.DismissCandidate(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Candidate %d dismissed\n", id)
			return nil
		},
	})

	return cmd
}

// ============ PERSONA COMMANDS ============

func personasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "Persona and system prompt management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			personas, err := repo.ListPersonas(context.Background())
			if err != nil {
				return err
			}
			for _, p := range personas {
				fmt.Printf("[%d] %s (%s)\n", p.ID, p.Name, p.Tradition)
			}
			return nil
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a persona",
	}
	pName := addCmd.Flags().String("name", "", "persona name")
	pTradition := addCmd.Flags().String("tradition", "", "philosophical tradition")
	pStyle := addCmd.Flags().String("style", "", "voice and style notes")
	addCmd.MarkFlagRequired("name")
	addCmd.RunE = func(cmd *cobra.Command, args []string) error {
		persona := &models.Persona{Name: *pName, Tradition: *pTradition, Style: *pStyle}
		if err := repo.CreatePersona(context.Background(), persona); err != nil {
			return err
		}
		fmt.Printf("Created persona %d: %s\n", persona.ID, persona.Name)
		return nil
	}
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "prompts <persona>",
		Short: "List system prompt versions for a persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			persona, err := resolvePersona(ctx, args[0])
			if err != nil {
				return err
			}
			prompts, err := repo.ListPrompts(ctx, persona.ID)
			if err != nil {
				return err
			}
			for _, p := range prompts {
				marker := " "
				if p.IsActive {
					marker = "*"
				}
				fmt.Printf("%s [%d] v%d (%d chars)\n", marker, p.ID, p.Version, len(p.Content))
			}
			return nil
		},
	})

	setPromptCmd := &cobra.Command{
		Use:   "set-prompt <persona>",
		Short: "Create and activate a new system prompt version from a file",
		Args:  cobra.ExactArgs(1),
	}
	promptFile := setPromptCmd.Flags().String("file", "", "path to prompt text file")
	setPromptCmd.MarkFlagRequired("file")
	setPromptCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		persona, err := resolvePersona(ctx, args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(*promptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		prompt := &models.SystemPrompt{PersonaID: persona.ID, Content: strings.TrimSpace(string(data))}
		if err := repo.CreatePrompt(ctx, prompt); err != nil {
			return err
		}
		if err := repo.ActivatePrompt(ctx, persona.ID, prompt.ID); err != nil {
			return err
		}
		fmt.Printf("Prompt v%d created and activated for %s\n", prompt.Version, persona.Name)
		return nil
	}
	cmd.AddCommand(setPromptCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "activate <persona> <prompt-id>",
		Short: "Switch the active prompt version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			persona, err := resolvePersona(ctx, args[0])
			if err != nil {
				return err
			}
			promptID, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := repo.ActivatePrompt(ctx, persona.ID, promptID); err != nil {
				return err
			}
			fmt.Printf("Prompt %d activated for %s\n", promptID, persona.Name)
			return nil
		},
	})

	guardrailCmd := &cobra.Command{
		Use:   "guardrail <persona>",
		Short: "Append the behavioral guardrail block to the active prompt",
		Args:  cobra.ExactArgs(1),
	}
	guardrailText := guardrailCmd.Flags().String("text", "", "guardrail block text")
	guardrailCmd.MarkFlagRequired("text")
	guardrailCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		persona, err := resolvePersona(ctx, args[0])
		if err != nil {
			return err
		}
		prompt, err := repo.AppendGuardrail(ctx, persona.ID, *guardrailText)
		if err != nil {
			if err == storage.ErrGuardrailExists {
				fmt.Printf("Guardrail already present on active prompt for %s\n", persona.Name)
				return nil
			}
			return err
		}
		fmt.Printf("Guardrail appended: prompt v%d now active for %s\n", prompt.Version, persona.Name)
		return nil
	}
	cmd.AddCommand(guardrailCmd)

	return cmd
}

// ============ GENERATE COMMAND ============

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate persona content",
	}
	personaRef := cmd.Flags().String("persona", "", "persona name or ID")
	contentType := cmd.Flags().String("type", "post", "content type key")
	label := cmd.Flags().String("label", "", "display label used to disambiguate generic post types")
	source := cmd.Flags().String("source", "", "source material text")
	candidateID := cmd.Flags().Uint("candidate", 0, "approved article candidate ID to use as source")
	debateID := cmd.Flags().Uint("debate", 0, "debate ID for debate statements")
	threadID := cmd.Flags().Uint("thread", 0, "agora thread ID for agora responses")
	short := cmd.Flags().Bool("short", false, "enforce the short-form word cap")
	preview := cmd.Flags().Bool("preview", false, "print the result without writing a log entry")
	cmd.MarkFlagRequired("persona")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		persona, err := resolvePersona(ctx, *personaRef)
		if err != nil {
			return fmt.Errorf("persona not found: %w", err)
		}

		key := content.ResolveKey(*contentType, *label)

		hint := generation.LengthDefault
		if *short {
			hint = generation.LengthShort
		}

		agent, orchestrator := buildCurator()

		if *preview {
			if *source == "" {
				return fmt.Errorf("--source is required for preview")
			}
			outcome, err := orchestrator.Generate(ctx, generation.Request{
				PersonaID:      persona.ID,
				ContentType:    key,
				SourceMaterial: *source,
				LengthHint:     hint,
			})
			if err != nil {
				return err
			}
			if !outcome.Success {
				fmt.Printf("Generation failed: %s\n", outcome.Err)
				return nil
			}
			return printJSON(outcome.Data)
		}

		var result *curator.GenerateResult
		if *candidateID != 0 {
			result, err = agent.GenerateFromCandidate(ctx, persona.ID, key, *candidateID, hint)
		} else {
			if *source == "" {
				return fmt.Errorf("either --source or --candidate is required")
			}
			input := curator.GenerateInput{
				PersonaID:      persona.ID,
				ContentType:    key,
				SourceMaterial: *source,
				LengthHint:     hint,
			}
			if *debateID != 0 {
				id := *debateID
				input.GroupKind = models.GroupKindDebate
				input.GroupID = &id
			} else if *threadID != 0 {
				id := *threadID
				input.GroupKind = models.GroupKindAgora
				input.GroupID = &id
			}
			result, err = agent.GenerateContent(ctx, input)
		}
		if err != nil {
			return err
		}

		if result.Skipped {
			fmt.Printf("Skipped after %d attempts: last result was %d words\n", result.Attempts, result.LastWordCount)
			return nil
		}
		entry := result.Entry
		if !entry.Succeeded() {
			fmt.Printf("Generation failed (log entry %d): %s\n", entry.ID, entry.ErrorMessage)
			return nil
		}
		fmt.Printf("Generated log entry %d (%s)\n", entry.ID, entry.ContentType)
		return printJSON(entry.Payload)
	}

	return cmd
}

// ============ DEBATE / AGORA COMMANDS ============

func debatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debates",
		Short: "Debate management",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new debate",
	}
	topic := createCmd.Flags().String("topic", "", "debate topic")
	createCmd.MarkFlagRequired("topic")
	createCmd.RunE = func(cmd *cobra.Command, args []string) error {
		debate := &models.Debate{Topic: *topic}
		if err := repo.CreateDebate(context.Background(), debate); err != nil {
			return err
		}
		fmt.Printf("Created debate %d: %s\n", debate.ID, debate.Topic)
		return nil
	}
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a debate transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			debate, err := repo.GetDebateByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Debate %d: %s\n\n", debate.ID, debate.Topic)
			posts, err := repo.ListDebatePosts(ctx, debate.ID)
			if err != nil {
				return err
			}
			for _, p := range posts {
				persona, err := repo.GetPersonaByID(ctx, p.PersonaID)
				if err != nil {
					return err
				}
				fmt.Printf("--- %s (%s) ---\n%s\n\n", persona.Name, p.Phase, p.Content)
			}
			if len(debate.Synthesis) > 0 {
				fmt.Println("--- Synthesis ---")
				return printJSON(debate.Synthesis)
			}
			return nil
		},
	})

	return cmd
}

func agoraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agora",
		Short: "Agora thread management",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open an agora thread from a reader question",
	}
	question := createCmd.Flags().String("question", "", "reader question")
	createCmd.MarkFlagRequired("question")
	createCmd.RunE = func(cmd *cobra.Command, args []string) error {
		thread := &models.AgoraThread{Question: *question}
		if err := repo.CreateAgoraThread(context.Background(), thread); err != nil {
			return err
		}
		fmt.Printf("Created thread %d\n", thread.ID)
		return nil
	}
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show an agora thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			thread, err := repo.GetAgoraThreadByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Thread %d: %s\n\n", thread.ID, thread.Question)
			responses, err := repo.ListAgoraResponses(ctx, thread.ID)
			if err != nil {
				return err
			}
			for _, r := range responses {
				persona, err := repo.GetPersonaByID(ctx, r.PersonaID)
				if err != nil {
					return err
				}
				fmt.Printf("--- %s ---\n%s\n\n", persona.Name, r.Content)
			}
			return nil
		},
	})

	return cmd
}

// ============ SYNTHESIZE COMMAND ============

func synthesizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Generate a cross-persona synthesis for a debate or agora thread",
	}
	debateID := cmd.Flags().Uint("debate", 0, "debate ID")
	threadID := cmd.Flags().Uint("thread", 0, "agora thread ID")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		agent, _ := buildCurator()

		var (
			key content.Key
			id  uint
		)
		switch {
		case *debateID != 0:
			key, id = content.KeyDebateSynthesis, *debateID
		case *threadID != 0:
			key, id = content.KeyAgoraSynthesis, *threadID
		default:
			return fmt.Errorf("either --debate or --thread is required")
		}

		entry, err := agent.GenerateSynthesis(ctx, key, id)
		if err != nil {
			return err
		}
		if !entry.Succeeded() {
			fmt.Printf("Synthesis failed (log entry %d): %s\n", entry.ID, entry.ErrorMessage)
			return nil
		}
		fmt.Printf("Synthesis generated: log entry %d\n", entry.ID)
		return printJSON(entry.Payload)
	}

	return cmd
}

// ============ REVIEW COMMANDS ============

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Generation log review and publishing",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List generation log entries",
	}
	statusFlag := listCmd.Flags().String("status", "generated", "filter by status (pending, generated, approved, rejected, published)")
	limitFlag := listCmd.Flags().Int("limit", 20, "max entries to show")
	listCmd.RunE = func(cmd *cobra.Command, args []string) error {
		filter := storage.DefaultLogFilter()
		filter.Limit = *limitFlag
		if *statusFlag != "" {
			status := models.LogStatus(*statusFlag)
			filter.Status = &status
		}
		entries, err := repo.ListLogEntries(context.Background(), filter)
		if err != nil {
			return err
		}
		for _, e := range entries {
			personaName := "-"
			if e.Persona != nil {
				personaName = e.Persona.Name
			}
			fmt.Printf("[%d] %-10s %-24s %s\n", e.ID, e.Status, e.ContentType, personaName)
		}
		return nil
	}
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a generation log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entry, err := repo.GetLogEntryByID(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Entry %d: %s (%s)\n", entry.ID, entry.ContentType, entry.Status)
			if entry.ErrorMessage != "" {
				fmt.Printf("Error: %s\n", entry.ErrorMessage)
			}
			if len(entry.Payload) > 0 {
				return printJSON(entry.Payload)
			}
			if entry.RawOutput != "" {
				fmt.Println(entry.RawOutput)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a generated entry for publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			agent, _ := buildCurator()
			if err := agent.Approve(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Entry %d approved\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a generated entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			agent, _ := buildCurator()
			if err := agent.Reject(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Entry %d rejected\n", id)
			return nil
		},
	})

	publishCmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish an approved entry as durable content",
		Args:  cobra.ExactArgs(1),
	}
	pubCandidate := publishCmd.Flags().Uint("candidate", 0, "source article candidate ID to link")
	pubReplyTo := publishCmd.Flags().Uint("reply-to", 0, "post ID being replied to (cross-philosopher replies)")
	pubDebate := publishCmd.Flags().Uint("debate", 0, "debate ID (debate statements and synthesis)")
	pubThread := publishCmd.Flags().Uint("thread", 0, "agora thread ID (agora responses and synthesis)")
	publishCmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		target := curator.PublishTarget{}
		if *pubCandidate != 0 {
			v := *pubCandidate
			target.CandidateID = &v
		}
		if *pubReplyTo != 0 {
			v := *pubReplyTo
			target.ReplyToPostID = &v
		}
		if *pubDebate != 0 {
			v := *pubDebate
			target.DebateID = &v
		}
		if *pubThread != 0 {
			v := *pubThread
			target.ThreadID = &v
		}
		agent, _ := buildCurator()
		if err := agent.Publish(context.Background(), id, target); err != nil {
			return err
		}
		fmt.Printf("Entry %d published\n", id)
		return nil
	}
	cmd.AddCommand(publishCmd)

	return cmd
}

// ============ HELPERS ============

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

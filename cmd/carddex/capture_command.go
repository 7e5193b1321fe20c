package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"carddex/internal/capture"
	"carddex/internal/catalog"
	"carddex/internal/collection"
	"carddex/internal/config"
	"carddex/internal/credits"
	"carddex/internal/grading"
	"carddex/internal/identification"
	"carddex/internal/identification/vision"
	"carddex/internal/library"
	"carddex/internal/prefs"
	"carddex/internal/storage"
	"carddex/internal/submission"
)

const tutorialText = `Capture tips:
  1. Lay the card flat on a dark, matte surface.
  2. Fill the frame with the card; avoid glare on the holo layer.
  3. Photograph the front first, then the back.`

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	var gradeRequested bool
	var entryID int64
	var condition string
	var retries int

	cmd := &cobra.Command{
		Use:   "capture <front-image> <back-image>",
		Short: "Identify a photographed card and add it to the collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				logger := ctx.newLogger()
				if gradeRequested && !cfg.Grading.Enabled {
					return fmt.Errorf("grading is disabled; enable it in the config and set a grading api_key")
				}

				coordinator, err := buildCoordinator(cfg, db, logger)
				if err != nil {
					return err
				}

				prefStore := prefs.NewStore(db, logger)
				showTutorial := cfg.Capture.ShowTutorial
				if seen, err := prefStore.Get(cmd.Context(), credits.DefaultUser, prefs.KeyTutorialSeen); err == nil && seen == "true" {
					showTutorial = false
				}

				session := capture.NewSession(prefStore, logger, capture.WithTutorial(showTutorial))
				flow := capture.NewFlow(session, coordinator, logger)

				if err := session.Begin(); err != nil {
					return err
				}
				if session.Step() == capture.StepTutorial {
					fmt.Fprintln(cmd.OutOrStdout(), tutorialText)
					if err := session.CompleteTutorial(true); err != nil {
						return err
					}
				}

				if err := flow.CaptureFront(cmd.Context(), fileAcquirer(args[0])); err != nil {
					return err
				}
				if err := session.ConfirmFront(); err != nil {
					return err
				}
				if err := flow.CaptureBack(cmd.Context(), fileAcquirer(args[1])); err != nil {
					return err
				}
				if err := session.ConfirmBack(); err != nil {
					return err
				}

				subjectID := session.ID()
				if entryID > 0 {
					subjectID = strconv.FormatInt(entryID, 10)
				}

				outcome, err := runWithRetries(cmd, flow, session, subjectID, gradeRequested, retries)
				if err != nil {
					return err
				}

				if err := recordCapture(cmd, db, session, outcome, entryID, condition); err != nil {
					return err
				}
				return session.Acknowledge()
			})
		},
	}

	cmd.Flags().BoolVar(&gradeRequested, "grade", false, "Request a condition grade (consumes one credit)")
	cmd.Flags().Int64Var(&entryID, "entry", 0, "Attach the capture to an existing collection entry")
	cmd.Flags().StringVar(&condition, "condition", "", "Condition note for a newly created entry")
	cmd.Flags().IntVar(&retries, "retries", 2, "Automatic retries for transient failures")
	return cmd
}

// buildCoordinator wires the submission pipeline from configuration. Grading
// collaborators stay nil when grading is disabled; the coordinator then
// rejects grade requests as a configuration failure.
func buildCoordinator(cfg *config.Config, db *library.DB, logger *slog.Logger) (*submission.Coordinator, error) {
	uploads, err := storage.New(
		cfg.Storage.BaseURL,
		cfg.Storage.Bucket,
		time.Duration(cfg.Storage.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("configure image storage: %w", err)
	}

	identifier, err := vision.New(
		cfg.Vision.APIKey,
		cfg.Vision.BaseURL,
		time.Duration(cfg.Vision.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("configure vision service: %w", err)
	}

	resolver := identification.NewResolver(catalog.NewStore(db), logger)

	var grader grading.Grader
	var ledger credits.Ledger
	if cfg.Grading.Enabled {
		client, err := grading.New(
			cfg.Grading.APIKey,
			cfg.Grading.BaseURL,
			time.Duration(cfg.Grading.TimeoutSeconds)*time.Second,
		)
		if err != nil {
			return nil, fmt.Errorf("configure grading service: %w", err)
		}
		grader = client
		ledger = credits.NewStore(db)
	}

	return submission.NewCoordinator(uploads, identifier, resolver, grader, ledger, logger), nil
}

// runWithRetries submits the confirmed capture, retrying retryable failures
// up to the requested limit. Terminal failures surface the user guidance.
func runWithRetries(cmd *cobra.Command, flow *capture.Flow, session *capture.Session, subjectID string, gradeRequested bool, retries int) (submission.Outcome, error) {
	out := cmd.OutOrStdout()
	attempts := retries + 1
	for attempt := 1; ; attempt++ {
		outcome, err := flow.Process(cmd.Context(), subjectID, gradeRequested)
		if err != nil {
			return submission.Outcome{}, err
		}
		if outcome.Success() {
			return outcome, nil
		}

		failure := outcome.Failure
		if !failure.Retryable || attempt >= attempts {
			return submission.Outcome{}, fmt.Errorf("%s", failure.UserMessage())
		}
		fmt.Fprintf(out, "Attempt %d failed (%s); retrying...\n", attempt, failure.Kind)
		if err := session.Retry(); err != nil {
			return submission.Outcome{}, err
		}
		if session.Step() != capture.StepConfirmation {
			return submission.Outcome{}, fmt.Errorf("%s", failure.UserMessage())
		}
	}
}

// recordCapture persists the matched card to the collection and prints the
// result. An existing entry is enriched in place; otherwise a new entry is
// created for the matched card.
func recordCapture(cmd *cobra.Command, db *library.DB, session *capture.Session, outcome submission.Outcome, entryID int64, condition string) error {
	card := outcome.Card
	store := collection.NewStore(db)
	progress := session.Progress()

	if entryID == 0 {
		id, err := store.Add(cmd.Context(), card.ID, 1, condition)
		if err != nil {
			return err
		}
		entryID = id
	}
	if err := store.AttachCapture(cmd.Context(), entryID, card.ID, progress.FrontURL, progress.BackURL, outcome.Grading); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	matchedLine := fmt.Sprintf("Matched: %s (%s #%s)", card.Name, card.SetName, card.LocalID)
	if shouldColorize(out) {
		matchedLine = text.FgGreen.Sprint(matchedLine)
	}
	fmt.Fprintln(out, matchedLine)
	if card.Price.Market > 0 {
		fmt.Fprintf(out, "Market price: %s\n", formatPrice(card.Price.Market))
	}
	if outcome.Grading != nil {
		fmt.Fprintln(out, renderTable(
			[]string{"Overall", "Centering", "Corners", "Edges", "Surface"},
			[][]string{{
				fmt.Sprintf("%.1f", outcome.Grading.Overall),
				fmt.Sprintf("%.1f", outcome.Grading.Centering),
				fmt.Sprintf("%.1f", outcome.Grading.Corners),
				fmt.Sprintf("%.1f", outcome.Grading.Edges),
				fmt.Sprintf("%.1f", outcome.Grading.Surface),
			}},
			[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
		))
	}
	fmt.Fprintf(out, "Saved to collection entry %d\n", entryID)
	return nil
}

func fileAcquirer(path string) capture.Acquirer {
	return capture.AcquirerFunc(func(_ context.Context) ([]byte, error) {
		return os.ReadFile(path)
	})
}

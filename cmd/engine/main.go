// Package main runs the practice engine as an interactive terminal
// session. It wires the session machine, grading pipeline, and scheduler
// to their infrastructure: PostgreSQL for session and card state, Redis
// for drafts and the failed-attempt stash, and the external grading API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prepdesk/prepdesk/config"
	"github.com/prepdesk/prepdesk/internal/application/practice"
	"github.com/prepdesk/prepdesk/internal/domain/session"
	"github.com/prepdesk/prepdesk/internal/domain/srs"
	"github.com/prepdesk/prepdesk/internal/infrastructure/content"
	"github.com/prepdesk/prepdesk/internal/infrastructure/external/grader"
	"github.com/prepdesk/prepdesk/internal/infrastructure/messaging"
	"github.com/prepdesk/prepdesk/internal/infrastructure/persistence/postgres"
	redisstore "github.com/prepdesk/prepdesk/internal/infrastructure/persistence/redis"
	"github.com/prepdesk/prepdesk/pkg/logger"
	"github.com/prepdesk/prepdesk/pkg/retry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		userID    = flag.String("user", "demo", "user identifier")
		subject   = flag.String("subject", "math", "subject: math, english, vocabulary")
		mode      = flag.String("mode", "", "vocabulary review mode: flashcards, quiz, mixed")
		count     = flag.Int("count", 0, "number of items (0 = configured default)")
		timeLimit = flag.Int("limit", 0, "session time limit in seconds (0 = unlimited)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	log.Info("starting practice engine",
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)))

	// Infrastructure. Both stores are optional: the engine degrades to
	// in-memory state when they are disabled or unreachable.
	var (
		sessions session.Persistence
		cards    srs.ReviewCardStore
		progress practice.ProgressRecorder
	)
	if !cfg.Database.Disabled && cfg.Database.URL != "" {
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer conn.Close()

		if err := postgres.Migrate(ctx, conn); err != nil {
			return err
		}

		sessions = postgres.NewSessionRepo(conn)
		cards = postgres.NewCardRepo(conn)
		progress = postgres.NewProgressRepo(conn)
		log.Info("postgres connected")
	} else {
		log.Warn("database disabled, session state will not be persisted")
	}

	var (
		drafts practice.DraftStore
		sink   practice.FailedAttemptSink
		hints  practice.HintTracker
	)
	if !cfg.Redis.Disabled {
		cache, err := redisstore.NewCache(redisstore.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   3,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("redis unavailable, drafts and failed attempts disabled", logger.Err(err))
		} else {
			defer cache.Close()
			drafts = redisstore.NewDraftStore(cache)
			sink = redisstore.NewFailedAttemptStash(cache)
			hints = redisstore.NewHintTracker(cache)
			log.Info("redis connected")
		}
	}

	graderClient := grader.NewClient(grader.ClientConfig{
		BaseURL: cfg.Grader.BaseURL,
		APIKey:  cfg.Grader.APIKey,
		Timeout: cfg.Grader.RequestTimeout,
	})

	bus := messaging.NewBus(nil)
	defer bus.Close()

	pipeline := practice.NewPipeline(practice.PipelineConfig{
		Grader: graderClient,
		Policy: retry.Policy{
			MaxAttempts: cfg.Grader.MaxRetries,
			Backoff:     retry.ExponentialBackoff(cfg.Grader.RetryBaseDelay, cfg.Grader.RetryMaxDelay, 2.0),
		},
		Sink:   sink,
		Bus:    bus,
		Logger: log.With(logger.Component("pipeline")),
	})

	svc := practice.NewService(practice.ServiceConfig{
		Items:        content.NewStaticProvider(nil),
		Pipeline:     pipeline,
		Sessions:     sessions,
		Cards:        cards,
		Drafts:       drafts,
		Hints:        hints,
		Bus:          bus,
		Progress:     progress,
		Logger:       log.With(logger.Component("practice")),
		TickInterval: cfg.Session.TickInterval,
	})

	itemCount := *count
	if itemCount <= 0 {
		itemCount = cfg.Session.DefaultItemCount
	}
	limit := *timeLimit
	if limit <= 0 {
		limit = int(cfg.Session.DefaultTimeLimit.Seconds())
	}

	reviewMode := session.ReviewMode(*mode)
	if *subject == string(session.SubjectVocabulary) && reviewMode == "" {
		reviewMode = session.ModeMixed
	}

	sessionCfg := session.Config{
		UserID:           *userID,
		Subject:          session.Subject(*subject),
		ItemCount:        itemCount,
		TimeLimitSeconds: limit,
		ReviewMode:       reviewMode,
	}

	m, err := svc.StartSession(ctx, sessionCfg)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	ticker := svc.RunTicker(ctx, m)
	defer ticker.Stop()

	return runLoop(ctx, svc, m)
}

// runLoop drives one session from stdin. Lines starting with ':' are
// commands; anything else is submitted as an answer or, in flashcard
// mode, treated as a self-rating.
func runLoop(ctx context.Context, svc *practice.Service, m *session.Machine) error {
	fmt.Printf("session %s started (%d items)\n", m.SessionID(), m.ItemCount())
	fmt.Println("commands: :pause :resume :hint :skip :end  ratings: again hard medium easy")

	printCurrent(m)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		if m.Status().IsTerminal() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":pause":
			report(m.Pause())
			continue
		case ":resume":
			report(m.Resume())
			continue
		case ":hint":
			showHint(ctx, svc, m)
			continue
		case ":skip":
			report(m.Advance())
			printCurrent(m)
			continue
		case ":end":
			report(m.End(ctx))
			continue
		}

		handleInput(ctx, m, line)

		if m.Status() == session.StatusFeedback {
			if out, ok := m.LastOutcome(); ok {
				printOutcome(out)
			}
			report(m.Advance())
		}
		svc.SyncProgress(ctx, m)

		if m.Status().IsTerminal() {
			break
		}
		printCurrent(m)
	}

	if !m.Status().IsTerminal() {
		if err := m.End(ctx); err != nil {
			return err
		}
	}

	if sum, ok := m.Summary(); ok {
		fmt.Printf("\nsession complete: %d/%d correct in %ds\n",
			sum.QuestionsCorrect, sum.QuestionsAttempted, sum.ElapsedSeconds)
		if m.TimedOut() {
			fmt.Println("(time limit reached)")
		}
	}

	return scanner.Err()
}

func handleInput(ctx context.Context, m *session.Machine, line string) {
	var rating srs.Rating
	if err := rating.UnmarshalText([]byte(line)); err == nil {
		if rerr := m.RateCurrent(rating); rerr == nil {
			return
		}
	}
	report(m.SubmitAnswer(ctx, line))
}

func printCurrent(m *session.Machine) {
	item, ok := m.CurrentItem()
	if !ok {
		return
	}
	fmt.Printf("\n[%ds] %s\n", m.Elapsed(), item.Prompt)
	for i, choice := range item.Choices {
		fmt.Printf("  %d) %s\n", i+1, choice)
	}
}

func printOutcome(out session.Outcome) {
	if out.Correct {
		fmt.Println("correct!")
	} else {
		fmt.Println("incorrect.")
		if out.CorrectAnswer != "" {
			fmt.Printf("answer: %s\n", out.CorrectAnswer)
		}
	}
	if out.Explanation != "" {
		fmt.Println(out.Explanation)
	}
}

func showHint(ctx context.Context, svc *practice.Service, m *session.Machine) {
	item, ok := m.CurrentItem()
	if !ok || len(item.Hints) == 0 {
		fmt.Println("no hints for this item")
		return
	}
	fmt.Println("hint:", item.Hints[0])
	svc.RevealHint(ctx, m, 0)
}

func report(err error) {
	if err != nil {
		fmt.Println("!", err)
	}
}

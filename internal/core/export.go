package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/mealplan/internal/logging"
)

// ExportUserData e-mails the caller a CSV export of their three
// collections with an HTML summary. It returns only *ExportError:
// unauthenticated and invalid-argument before any work starts, internal
// for any failure after that. The cause of an internal failure is logged
// and never returned in the message.
func (s *Service) ExportUserData(ctx context.Context, caller Caller) (*ExportResult, error) {
	if !caller.Authenticated() {
		return nil, &ExportError{Kind: KindUnauthenticated, Message: MsgUnauthenticated}
	}
	if caller.Email == "" {
		return nil, &ExportError{Kind: KindInvalidArgument, Message: MsgEmailRequired}
	}

	log := logging.WithFields(ctx, "export_id", uuid.NewString(), "uid", caller.UID)
	start := time.Now()

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			log.Error("export slot unavailable", "error", err)
			return nil, exportInternal(err)
		}
		defer s.limiter.Release()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.runExport(ctx, caller, log)
	if err != nil {
		log.Error("export failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, exportInternal(err)
	}

	log.Info("export sent",
		"meal_plans", summary.TotalMealPlans,
		"ingredients", summary.TotalIngredients,
		"feedback", summary.TotalFeedback,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &ExportResult{
		Success: true,
		Message: MsgExportSent,
		Summary: summary,
	}, nil
}

func (s *Service) runExport(ctx context.Context, caller Caller, log *slog.Logger) (ExportSummary, error) {
	defs := Collections()

	records, err := s.fetchAll(ctx, caller.UID, defs)
	if err != nil {
		return ExportSummary{}, err
	}
	log.Debug("collections fetched")

	byKey := make(map[CollectionKey][]Record, len(defs))
	attachments := make([]Attachment, 0, len(defs))
	for i, def := range defs {
		byKey[def.Key] = records[i]
		attachments = append(attachments, csvAttachment(def, records[i]))
	}

	now := s.now()
	summary := Summarize(byKey[MealPlans], byKey[Ingredients], byKey[Feedback], now)
	date := FormatLocalDate(now, s.location)

	html, err := RenderReport(ctx, ReportData{
		Date:        date,
		Summary:     summary,
		Collections: defs,
	})
	if err != nil {
		return ExportSummary{}, err
	}

	msg := EmailMessage{
		To:          caller.Email,
		From:        s.from,
		Subject:     "Your Meal Management Data Export - " + date,
		HTML:        html,
		Attachments: attachments,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return ExportSummary{}, fmt.Errorf("send export email: %w", err)
	}

	return summary, nil
}

// fetchAll loads every collection concurrently. The first failure cancels
// the remaining fetches. Results are indexed like defs.
func (s *Service) fetchAll(ctx context.Context, ownerID string, defs []CollectionDefinition) ([][]Record, error) {
	results := make([][]Record, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			recs, err := s.store.Fetch(gctx, ownerID, def.Key)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", def.Key, err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func csvAttachment(def CollectionDefinition, records []Record) Attachment {
	text := EncodeCSV(def.Headers, MapRows(records, def.MapRow))
	return Attachment{
		Filename:    def.Filename,
		Content:     base64.StdEncoding.EncodeToString([]byte(text)),
		Type:        "text/csv",
		Disposition: "attachment",
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-ratchet-tracker/internal/engine"
	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/syncer/config"
	"golang-ratchet-tracker/internal/syncer/dto"
	"golang-ratchet-tracker/internal/syncer/repository"
	"golang-ratchet-tracker/pkg/common"
	"golang-ratchet-tracker/pkg/logger"
	"golang-ratchet-tracker/pkg/mailer"
	redisPkg "golang-ratchet-tracker/pkg/redis"
	"golang-ratchet-tracker/pkg/telegram"
	"golang-ratchet-tracker/pkg/utils"

	redis "github.com/redis/go-redis/v9"
)

// PriceSyncService runs one idempotent synchronization pass: fetch every
// tracked symbol once, advance each position's ratchet, persist what changed
// and notify newly triggered ledgers.
type PriceSyncService interface {
	Run(ctx context.Context) (*dto.SyncReport, error)
}

type priceSyncService struct {
	cfg       *config.Config
	log       *logger.Logger
	positions repository.PositionsRepository
	users     repository.UsersRepository
	alerts    repository.AlertsRepository
	primary   repository.QuoteRepository
	fallback  repository.QuoteRepository
	redis     *redisPkg.Client
	mail      mailer.Notifier
	telegram  telegram.Notifier
	now       func() time.Time
}

// NewPriceSyncService wires the sync job. fallback, redisClient, mail and tg
// may be nil; the corresponding step is skipped.
func NewPriceSyncService(
	cfg *config.Config,
	log *logger.Logger,
	positions repository.PositionsRepository,
	users repository.UsersRepository,
	alerts repository.AlertsRepository,
	primary repository.QuoteRepository,
	fallback repository.QuoteRepository,
	redisClient *redisPkg.Client,
	mail mailer.Notifier,
	tg telegram.Notifier,
) PriceSyncService {
	return &priceSyncService{
		cfg:       cfg,
		log:       log,
		positions: positions,
		users:     users,
		alerts:    alerts,
		primary:   primary,
		fallback:  fallback,
		redis:     redisClient,
		mail:      mail,
		telegram:  tg,
		now:       utils.TimeNowEastern,
	}
}

// triggerEvent is a position that newly breached its threshold this run.
type triggerEvent struct {
	Position  entity.Position
	Price     float64
	Threshold float64
}

func (s *priceSyncService) Run(ctx context.Context) (*dto.SyncReport, error) {
	start := s.now()
	report := &dto.SyncReport{}

	positions, err := s.positions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	if len(positions) == 0 {
		s.log.Info("Sync run complete, no positions tracked")
		return report, nil
	}

	symbols := dedupeSymbols(positions)
	report.Symbols = len(symbols)
	s.log.Info("Fetching symbols", logger.IntField("symbols", len(symbols)), logger.IntField("positions", len(positions)))
	prices := s.fetchQuotes(ctx, symbols, report)

	s.log.Info("Updating ledgers", logger.IntField("prices", len(prices)))
	runAlerts, events, byUser := s.updateLedgers(ctx, positions, prices, start, report)

	if err := s.alerts.CreateBatch(ctx, runAlerts); err != nil {
		s.log.Error("Failed to persist alerts", logger.ErrorField(err), logger.IntField("alerts", len(runAlerts)))
	} else {
		report.AlertsCreated = len(runAlerts)
	}

	s.log.Info("Notifying", logger.IntField("triggered", len(events)))
	s.notify(ctx, byUser, events, start, report)

	s.recordLastRun(ctx)
	s.log.Info("Sync run complete",
		logger.IntField("symbols_fetched", report.SymbolsFetched),
		logger.IntField("symbols_skipped", report.SymbolsSkipped),
		logger.IntField("positions_updated", report.PositionsUpdated),
		logger.IntField("stale_writes", report.StaleWrites),
		logger.IntField("alerts_created", report.AlertsCreated),
		logger.IntField("emails_sent", report.EmailsSent),
	)

	return report, nil
}

// dedupeSymbols builds the sorted set of uppercase symbols referenced by any
// position across all users. Each symbol is fetched at most once per run no
// matter how many ledgers hold it.
func dedupeSymbols(positions []entity.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		seen[strings.ToUpper(p.Symbol)] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

func (s *priceSyncService) fetchQuotes(ctx context.Context, symbols []string, report *dto.SyncReport) map[string]float64 {
	day := utils.TradingDay(s.now())
	prices := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}

		if price, ok := s.cachedQuote(ctx, symbol, day); ok {
			prices[symbol] = price
			report.SymbolsFetched++
			continue
		}

		quote, err := s.fetchWithRetry(ctx, s.primary, symbol)
		if err != nil && s.fallback != nil && ctx.Err() == nil {
			s.log.Warn("Primary provider failed, trying fallback",
				logger.StringField("symbol", symbol),
				logger.StringField("provider", s.primary.Name()),
				logger.ErrorField(err),
			)
			quote, err = s.fetchWithRetry(ctx, s.fallback, symbol)
		}
		if err != nil {
			// Soft-fail: the symbol's positions are skipped this run.
			s.log.Error("No price for symbol this run", logger.StringField("symbol", symbol), logger.ErrorField(err))
			report.SymbolsSkipped++
			continue
		}

		prices[symbol] = quote.Price
		report.SymbolsFetched++
		s.storeQuote(ctx, symbol, day, quote.Price)
	}

	return prices
}

// fetchWithRetry retries only on an explicit rate-limit signal, pausing for
// the configured cooldown between attempts. The retry count is bounded so a
// provider that never recovers cannot hang the run.
func (s *priceSyncService) fetchWithRetry(ctx context.Context, provider repository.QuoteRepository, symbol string) (*dto.Quote, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.Sync.RateLimitMaxRetries; attempt++ {
		quote, err := provider.GetQuote(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, repository.ErrRateLimited) {
			return nil, err
		}
		lastErr = err

		s.log.Warn("Quote provider rate limited, cooling down",
			logger.StringField("provider", provider.Name()),
			logger.StringField("symbol", symbol),
			logger.IntField("attempt", attempt+1),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.Sync.RateLimitCooldown):
		}
	}
	return nil, fmt.Errorf("rate limit retries exhausted for %s: %w", symbol, lastErr)
}

func (s *priceSyncService) updateLedgers(
	ctx context.Context,
	positions []entity.Position,
	prices map[string]float64,
	start time.Time,
	report *dto.SyncReport,
) ([]entity.Alert, []triggerEvent, map[uint][]entity.Position) {
	var runAlerts []entity.Alert
	var events []triggerEvent
	byUser := make(map[uint][]entity.Position)

	for i := range positions {
		p := &positions[i]

		price, ok := prices[strings.ToUpper(p.Symbol)]
		if ok {
			upd, err := engine.ApplyPrice(p, price, start)
			if err != nil {
				s.log.Error("Rejected price update", logger.ErrorField(err), logger.StringField("symbol", p.Symbol))
			} else if upd.Changed {
				// The alert and its notification only count once the
				// triggered flag is committed. A stale write means a client
				// edit won the race; the next run re-evaluates from the
				// committed state.
				if err := s.positions.UpdateChecked(ctx, p); err != nil {
					if errors.Is(err, repository.ErrStaleUpdate) {
						report.StaleWrites++
						s.log.Warn("Skipped stale write, position changed concurrently", logger.StringField("symbol", p.Symbol))
					} else {
						s.log.Error("Failed to persist position", logger.ErrorField(err), logger.StringField("symbol", p.Symbol))
					}
				} else {
					report.PositionsUpdated++
					if upd.Alert != nil {
						runAlerts = append(runAlerts, *upd.Alert)
						events = append(events, triggerEvent{Position: *p, Price: price, Threshold: upd.Threshold})
					}
				}
			}
		}

		byUser[p.UserID] = append(byUser[p.UserID], *p)
	}

	return runAlerts, events, byUser
}

func (s *priceSyncService) notify(
	ctx context.Context,
	byUser map[uint][]entity.Position,
	events []triggerEvent,
	start time.Time,
	report *dto.SyncReport,
) {
	userIDs := make([]uint, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}

	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		s.log.Error("Failed to load users for notification", logger.ErrorField(err))
		return
	}

	eventsByUser := make(map[uint][]triggerEvent)
	for _, ev := range events {
		eventsByUser[ev.Position.UserID] = append(eventsByUser[ev.Position.UserID], ev)
	}

	for i := range users {
		user := &users[i]
		if user.SummaryFrequency == entity.SummaryFrequencyNone {
			continue
		}

		for _, ev := range eventsByUser[user.ID] {
			s.sendTriggerAlert(ctx, user, ev, start, report)
		}

		wantSummary := user.SummaryFrequency == entity.SummaryFrequencyDaily ||
			(user.SummaryFrequency == entity.SummaryFrequencyFriday && utils.IsFriday(start))
		if wantSummary {
			s.sendSummary(ctx, user, byUser[user.ID], start, report)
		}
	}
}

func (s *priceSyncService) sendTriggerAlert(ctx context.Context, user *entity.User, ev triggerEvent, start time.Time, report *dto.SyncReport) {
	if s.mail != nil && user.NotifyEmail != "" {
		subject, html := mailer.FormatTriggerAlert(mailer.TriggerAlert{
			Symbol:      ev.Position.Symbol,
			CompanyName: ev.Position.CompanyName,
			Price:       ev.Price,
			Threshold:   ev.Threshold,
			When:        start,
		})
		if err := s.mail.Send(ctx, user.NotifyEmail, subject, html); err != nil {
			report.EmailsFailed++
			s.log.Error("Failed to send trigger email", logger.ErrorField(err), logger.StringField("symbol", ev.Position.Symbol))
		} else {
			report.EmailsSent++
		}
	}

	if s.telegram != nil && user.TelegramChatID != 0 {
		msg := telegram.FormatTriggerAlert(ev.Position.Symbol, ev.Price, ev.Threshold, start)
		if err := s.telegram.SendMessageUser(msg, user.TelegramChatID); err != nil {
			s.log.Error("Failed to send telegram alert", logger.ErrorField(err), logger.StringField("symbol", ev.Position.Symbol))
		}
	}
}

func (s *priceSyncService) sendSummary(ctx context.Context, user *entity.User, positions []entity.Position, start time.Time, report *dto.SyncReport) {
	if s.mail == nil || user.NotifyEmail == "" {
		return
	}

	rows := make([]mailer.SummaryRow, 0, len(positions))
	for _, p := range positions {
		threshold := engine.ComputeThreshold(p.HighestClose, p.TypicalVolatility, p.VolatilityMultiplier)
		distance := 0.0
		if p.CurrentPrice > 0 {
			distance = (p.CurrentPrice - threshold) / p.CurrentPrice * 100
		}
		rows = append(rows, mailer.SummaryRow{
			Symbol:       p.Symbol,
			CompanyName:  p.CompanyName,
			CurrentPrice: p.CurrentPrice,
			Threshold:    threshold,
			DistancePct:  distance,
			Triggered:    p.Triggered,
		})
	}

	subject, html := mailer.FormatSummary(rows, start)
	if err := s.mail.Send(ctx, user.NotifyEmail, subject, html); err != nil {
		report.EmailsFailed++
		s.log.Error("Failed to send summary email", logger.ErrorField(err), logger.StringField("email", user.NotifyEmail))
	} else {
		report.EmailsSent++
	}
}

// cachedQuote reads the per-day quote cache so a same-day re-run does not
// re-fetch from the providers.
func (s *priceSyncService) cachedQuote(ctx context.Context, symbol, day string) (float64, bool) {
	if s.redis == nil {
		return 0, false
	}
	val, err := s.redis.Get(ctx, fmt.Sprintf(common.RedisKeyQuote, symbol, day)).Float64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Failed to read quote cache", logger.ErrorField(err), logger.StringField("symbol", symbol))
		}
		return 0, false
	}
	return val, true
}

func (s *priceSyncService) storeQuote(ctx context.Context, symbol, day string, price float64) {
	if s.redis == nil {
		return
	}
	key := fmt.Sprintf(common.RedisKeyQuote, symbol, day)
	if err := s.redis.Set(ctx, key, price, s.cfg.Sync.QuoteCacheTTL).Err(); err != nil {
		s.log.Warn("Failed to write quote cache", logger.ErrorField(err), logger.StringField("symbol", symbol))
	}
}

func (s *priceSyncService) recordLastRun(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, common.RedisKeySyncLastRun, s.now().Format(time.RFC3339), 0).Err(); err != nil {
		s.log.Warn("Failed to record last run", logger.ErrorField(err))
	}
}

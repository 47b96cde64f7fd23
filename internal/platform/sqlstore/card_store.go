package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/store"
)

const cardsTable = "cards"

var cardColumns = []string{
	"id",
	"owner_id",
	"front",
	"back",
	"learned",
	"next_review",
	"repetition_step",
}

// CardStore implements the store.CardStore interface over a *sql.DB.
type CardStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// NewCardStore creates a CardStore speaking the given dialect.
// If logger is nil, a default logger will be used.
func NewCardStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:      db,
		dialect: dialect,
		logger: logger.With(
			slog.String("component", "card_store"),
			slog.String("dialect", dialect.Name),
		),
	}
}

// AddCard implements store.CardStore.AddCard
func (s *CardStore) AddCard(
	ctx context.Context,
	ownerID int64,
	front, back string,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(ownerID, front, back, now)
	if err != nil {
		return nil, store.NewStoreError("card", "create", "invalid card", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	query, args, err := s.dialect.builder().
		Insert(cardsTable).
		Columns("owner_id", "front", "back", "learned", "next_review", "repetition_step").
		Values(card.OwnerID, card.Front, card.Back, card.Learned, card.NextReview, card.RepetitionStep).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&card.ID); err != nil {
		mapped := s.dialect.mapError(err)
		if errors.Is(mapped, store.ErrDuplicate) {
			log.Debug("duplicate word rejected",
				slog.Int64("owner_id", ownerID),
				slog.String("front", card.Front))
			return nil, store.NewStoreError("card", "create", "word already exists", store.ErrDuplicateWord)
		}
		log.Error("failed to insert card",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, store.NewStoreError("card", "create", "insert failed", mapped)
	}

	log.Debug("card created",
		slog.Int64("card_id", card.ID),
		slog.Int64("owner_id", ownerID))
	return card, nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	return s.getByID(ctx, s.db, id, "")
}

// DueCards implements store.CardStore.DueCards
func (s *CardStore) DueCards(
	ctx context.Context,
	ownerID int64,
	now time.Time,
	limit int,
) ([]domain.Card, error) {
	// Stored timestamps are whole seconds, so comparing against the truncated
	// clock selects exactly the cards with next_review <= now.
	builder := s.selectCards().
		Where(sq.Eq{"owner_id": ownerID}).
		Where(sq.LtOrEq{"next_review": domain.TruncateTime(now)}).
		OrderBy("id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return s.list(ctx, "due_cards", builder)
}

// AllCards implements store.CardStore.AllCards
func (s *CardStore) AllCards(ctx context.Context, ownerID int64) ([]domain.Card, error) {
	builder := s.selectCards().
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("id")

	return s.list(ctx, "all_cards", builder)
}

// Persist implements store.CardStore.Persist
func (s *CardStore) Persist(ctx context.Context, card *domain.Card) error {
	if card == nil {
		return store.NewStoreError("card", "persist", "card is nil", store.ErrInvalidEntity)
	}
	if err := card.Validate(); err != nil {
		return store.NewStoreError("card", "persist", "invalid card", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	return s.write(ctx, s.db, card)
}

// UpdateSchedule implements store.CardStore.UpdateSchedule
//
// The card is re-read inside a transaction with the dialect's lock clause, so
// a concurrent update of the same card waits until this one commits.
func (s *CardStore) UpdateSchedule(
	ctx context.Context,
	id int64,
	fn store.ScheduleFn,
) (*domain.Card, error) {
	var result *domain.Card

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.getByID(ctx, tx, id, s.dialect.LockClause)
		if err != nil {
			return err
		}

		updated, err := fn(*current)
		if err != nil {
			return err
		}
		if updated == nil {
			return store.NewStoreError("card", "update_schedule", "schedule function returned no card", store.ErrInvalidEntity)
		}
		if err := updated.Validate(); err != nil {
			return store.NewStoreError("card", "update_schedule", "invalid card", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
		}

		next := *current
		next.Learned = updated.Learned
		next.NextReview = domain.TruncateTime(updated.NextReview)
		next.RepetitionStep = updated.RepetitionStep

		if err := s.write(ctx, tx, &next); err != nil {
			return err
		}

		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("card schedule updated",
		slog.Int64("card_id", id),
		slog.Int("repetition_step", int(result.RepetitionStep)),
		slog.Time("next_review", result.NextReview))
	return result, nil
}

// DistinctOwners implements store.CardStore.DistinctOwners
func (s *CardStore) DistinctOwners(ctx context.Context) ([]int64, error) {
	query, args, err := s.dialect.builder().
		Select("owner_id").
		Distinct().
		From(cardsTable).
		OrderBy("owner_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build owners query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("card", "distinct_owners", "query failed", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	owners := make([]int64, 0)
	for rows.Next() {
		var owner int64
		if err := rows.Scan(&owner); err != nil {
			return nil, store.NewStoreError("card", "distinct_owners", "scan failed", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "distinct_owners", "iteration failed", s.dialect.mapError(err))
	}

	return owners, nil
}

// CountCards implements store.CardStore.CountCards
func (s *CardStore) CountCards(ctx context.Context, ownerID int64) (int, int, error) {
	query, args, err := s.dialect.builder().
		Select("COUNT(*)", "COALESCE(SUM(CASE WHEN learned THEN 1 ELSE 0 END), 0)").
		From(cardsTable).
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total, learned int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total, &learned); err != nil {
		return 0, 0, store.NewStoreError("card", "count", "query failed", s.dialect.mapError(err))
	}

	return total, learned, nil
}

func (s *CardStore) selectCards() sq.SelectBuilder {
	return s.dialect.builder().Select(cardColumns...).From(cardsTable)
}

func (s *CardStore) getByID(ctx context.Context, q store.DBTX, id int64, suffix string) (*domain.Card, error) {
	builder := s.selectCards().Where(sq.Eq{"id": id})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	card, err := scanCard(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, store.NewStoreError("card", "get", "query failed", s.dialect.mapError(err))
	}

	return card, nil
}

func (s *CardStore) list(ctx context.Context, operation string, builder sq.SelectBuilder) ([]domain.Card, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", operation, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("card query failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", operation, "query failed", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", operation, "scan failed", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", operation, "iteration failed", s.dialect.mapError(err))
	}

	return cards, nil
}

func (s *CardStore) write(ctx context.Context, q store.DBTX, card *domain.Card) error {
	query, args, err := s.dialect.builder().
		Update(cardsTable).
		Set("learned", card.Learned).
		Set("next_review", domain.TruncateTime(card.NextReview)).
		Set("repetition_step", card.RepetitionStep).
		Where(sq.Eq{"id": card.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card",
			slog.Int64("card_id", card.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("card", "update", "update failed", fmt.Errorf("%w: %w", store.ErrUpdateFailed, s.dialect.mapError(err)))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("card", "update", "rows affected unavailable", err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	if err := row.Scan(
		&card.ID,
		&card.OwnerID,
		&card.Front,
		&card.Back,
		&card.Learned,
		&card.NextReview,
		&card.RepetitionStep,
	); err != nil {
		return nil, err
	}

	card.NextReview = domain.TruncateTime(card.NextReview)
	return &card, nil
}

package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/order-service/internal/entity"
)

// OrderAuditRepository persists the append-only audit trail of order
// lifecycle events.
type OrderAuditRepository interface {
	Create(ctx context.Context, auditLog *entity.OrderAuditLog) error
	GetByOrderUUID(ctx context.Context, orderUUID string) ([]entity.OrderAuditLog, error)
}

type PostgresOrderAuditRepository struct {
	db *sqlx.DB
}

func NewPostgresOrderAuditRepository(db *sqlx.DB) *PostgresOrderAuditRepository {
	return &PostgresOrderAuditRepository{db: db}
}

func (r *PostgresOrderAuditRepository) Create(ctx context.Context, auditLog *entity.OrderAuditLog) error {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(auditLog.TableName()).
		Columns(
			"order_uuid",
			"action",
			"price",
			"quote_amount",
			"base_amount",
			"side",
			"occurred_at",
			"created_at",
		).
		Values(
			auditLog.OrderUUID,
			auditLog.Action,
			auditLog.Price,
			auditLog.QuoteAmount,
			auditLog.BaseAmount,
			auditLog.Side,
			auditLog.OccurredAt,
			auditLog.CreatedAt,
		).
		Suffix("RETURNING id")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	var id string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		return err
	}

	auditLog.ID = id

	return err
}

func (r *PostgresOrderAuditRepository) GetByOrderUUID(ctx context.Context, orderUUID string) ([]entity.OrderAuditLog, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From(entity.OrderAuditLog{}.TableName()).
		Where(sq.Eq{"order_uuid": orderUUID}).
		OrderBy("occurred_at asc")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	var auditLogs []entity.OrderAuditLog
	err = r.db.SelectContext(ctx, &auditLogs, query, args...)
	if err != nil {
		return nil, err
	}

	return auditLogs, nil
}

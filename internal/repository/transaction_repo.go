package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
)

// TransactionRepository handles data access for Dragonpay transactions.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new transaction row.
func (r *TransactionRepository) Create(trx *models.Transaction) error {
	const q = `
        INSERT INTO dragonpay_transactions (
            txn_id, amount, currency, description, email, is_sandbox, status_code, status, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
        ) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(q,
		trx.TransactionID, trx.Amount, trx.Currency, trx.Description, trx.Email,
		trx.IsSandbox, trx.StatusCode, trx.Status,
	).Scan(&trx.ID, &trx.CreatedAt, &trx.UpdatedAt)
	if isUniqueViolation(err) {
		return utils.ErrDuplicateTransactionID
	}
	return err
}

// GetByTxnID returns the transaction with the given merchant transaction id.
func (r *TransactionRepository) GetByTxnID(txnID string) (*models.Transaction, error) {
	const q = `SELECT * FROM dragonpay_transactions WHERE txn_id = $1`
	var trx models.Transaction
	if err := r.db.Get(&trx, q, txnID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// UpdateStatus stores a decoded gateway status. settled_at is set the first time a
// success status is recorded. A final status is only replaced by a reversal
// (refund, chargeback, void); other writes return ErrTransactionFinal.
func (r *TransactionRepository) UpdateStatus(txnID, statusCode, status string, refNo, message *string) error {
	const q = `
        UPDATE dragonpay_transactions SET
            status_code = $2,
            status = $3,
            ref_no = COALESCE($4, ref_no),
            message = COALESCE($5, message),
            settled_at = CASE WHEN $3 = 'success' AND settled_at IS NULL THEN NOW() ELSE settled_at END,
            updated_at = NOW()
        WHERE txn_id = $1
          AND (
            status = $3
            OR status NOT IN ('success', 'failure', 'refund', 'chargeback', 'void')
            OR $3 IN ('refund', 'chargeback', 'void')
          )`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	res, err := stmt.Exec(txnID, statusCode, status, refNo, message)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.missOrFinal(txnID)
	}
	return nil
}

// ExpirePending marks a still-pending transaction failed. It reports false when the
// transaction has meanwhile reached another status.
func (r *TransactionRepository) ExpirePending(txnID, message string) (bool, error) {
	const q = `
        UPDATE dragonpay_transactions SET
            status_code = 'F',
            status = 'failure',
            message = $2,
            updated_at = NOW()
        WHERE txn_id = $1
          AND status IN ('pending', 'unknown', 'authorized')`
	res, err := r.db.Exec(q, txnID, message)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// missOrFinal explains why a guarded update touched no row.
func (r *TransactionRepository) missOrFinal(txnID string) error {
	var exists bool
	if err := r.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM dragonpay_transactions WHERE txn_id = $1)`, txnID); err != nil {
		return err
	}
	if !exists {
		return utils.ErrTransactionNotFound
	}
	return utils.ErrTransactionFinal
}

// MarkChecked bumps check_count and last_checked_at after a GETSTATUS call.
func (r *TransactionRepository) MarkChecked(txnID string) error {
	const q = `
        UPDATE dragonpay_transactions SET
            check_count = check_count + 1,
            last_checked_at = NOW()
        WHERE txn_id = $1`
	_, err := r.db.Exec(q, txnID)
	return err
}

// GetStalePending returns pending transactions not checked within staleAfter.
// Rows are not locked; concurrent writers are handled by the status guards in
// UpdateStatus and ExpirePending.
func (r *TransactionRepository) GetStalePending(staleAfter time.Duration, limit int) ([]models.Transaction, error) {
	const q = `
        SELECT * FROM dragonpay_transactions
        WHERE status IN ('pending', 'unknown', 'authorized')
          AND COALESCE(last_checked_at, created_at) <= NOW() - ($1 * INTERVAL '1 second')
        ORDER BY COALESCE(last_checked_at, created_at) ASC
        LIMIT $2`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var list []models.Transaction
	if err := stmt.Select(&list, int64(staleAfter.Seconds()), limit); err != nil {
		return nil, err
	}
	return list, nil
}

// List returns a page of transactions and the total count for filter.
func (r *TransactionRepository) List(filter models.TransactionFilter) ([]models.Transaction, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	offset := (filter.Page - 1) * filter.Limit

	var total int
	if err := r.db.Get(&total,
		`SELECT COUNT(*) FROM dragonpay_transactions WHERE ($1 = '' OR status = $1)`,
		filter.Status,
	); err != nil {
		return nil, 0, err
	}

	var list []models.Transaction
	if err := r.db.Select(&list, `
        SELECT * FROM dragonpay_transactions
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`,
		filter.Status, filter.Limit, offset,
	); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_dragonpay/internal/models"
)

// PostbackRepository stores raw Dragonpay postbacks.
type PostbackRepository struct {
	db *sqlx.DB
}

// NewPostbackRepository creates a new PostbackRepository.
func NewPostbackRepository(db *sqlx.DB) *PostbackRepository {
	return &PostbackRepository{db: db}
}

// Create inserts a postback row.
func (r *PostbackRepository) Create(p *models.Postback) error {
	const q = `
        INSERT INTO dragonpay_postbacks (
            txn_id, ref_no, status_code, message, digest, is_valid, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, NOW()
        ) RETURNING id, created_at`
	return r.db.QueryRow(q,
		p.TransactionID, p.RefNo, p.StatusCode, p.Message, p.Digest, p.IsValid,
	).Scan(&p.ID, &p.CreatedAt)
}

// ListByTxnID returns postbacks for a transaction ordered by arrival.
func (r *PostbackRepository) ListByTxnID(txnID string) ([]models.Postback, error) {
	const q = `SELECT * FROM dragonpay_postbacks WHERE txn_id = $1 ORDER BY created_at ASC`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var list []models.Postback
	if err := stmt.Select(&list, txnID); err != nil {
		return nil, err
	}
	return list, nil
}

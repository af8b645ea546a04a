package queue

import (
	"context"
	"database/sql"
	"fmt"

	"vellum/internal/contract"
)

// ReplaceShares swaps the persisted share schedule for an item with the
// records the renderer produced.
func (s *Store) ReplaceShares(ctx context.Context, itemID int64, shares []contract.Share) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM share_records WHERE item_id = ?`, itemID); err != nil {
			return fmt.Errorf("clear share records: %w", err)
		}
		for _, share := range shares {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO share_records (item_id, category, value, unit, valid_from, valid_to)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				itemID,
				string(share.Category),
				share.Value,
				string(share.Unit),
				nullableString(share.ValidFrom.String()),
				nullableString(share.ValidTo.String()),
			); err != nil {
				return fmt.Errorf("insert share record: %w", err)
			}
		}
		return nil
	})
}

// SharesForItem returns the persisted share schedule ordered by validity
// start date.
func (s *Store) SharesForItem(ctx context.Context, itemID int64) ([]contract.Share, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT category, value, unit, valid_from, valid_to
         FROM share_records WHERE item_id = ? ORDER BY valid_from, category`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query share records: %w", err)
	}
	defer rows.Close()

	var shares []contract.Share
	for rows.Next() {
		var (
			category  string
			value     float64
			unit      string
			validFrom sql.NullString
			validTo   sql.NullString
		)
		if err := rows.Scan(&category, &value, &unit, &validFrom, &validTo); err != nil {
			return nil, fmt.Errorf("scan share record: %w", err)
		}
		share := contract.Share{
			Category: contract.Category(category),
			Value:    value,
			Unit:     contract.Unit(unit),
		}
		if validFrom.Valid && validFrom.String != "" {
			parsed, err := contract.ParseDate(validFrom.String)
			if err != nil {
				return nil, fmt.Errorf("parse share valid_from: %w", err)
			}
			share.ValidFrom = parsed
		}
		if validTo.Valid && validTo.String != "" {
			parsed, err := contract.ParseDate(validTo.String)
			if err != nil {
				return nil, fmt.Errorf("parse share valid_to: %w", err)
			}
			share.ValidTo = parsed
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

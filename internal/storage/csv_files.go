package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"metabulo/pkg/contracts/domain"
)

// ListOptions pages and orders the upload list
type ListOptions struct {
	Limit  int
	Offset int
	// Descending lists the newest upload first
	Descending bool
}

// CreateCSVFile stores an upload and its labels in one transaction.
// Timestamps are set by the store.
func (s *Store) CreateCSVFile(ctx context.Context, file *domain.CSVFile) error {
	now := s.now()
	file.CreatedAt, file.UpdatedAt = now, now

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO csv_files (id, name, table_data, checksum, size, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			file.ID, file.Name, file.Table, file.Checksum, file.Size, file.CreatedAt, file.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert csv file: %w", err)
		}

		rowStmt, err := tx.PreparexContext(ctx, tx.Rebind(
			`INSERT INTO table_rows (csv_file_id, row_index, row_type) VALUES (?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare row insert: %w", err)
		}
		defer rowStmt.Close()
		for _, row := range file.Rows {
			if _, err := rowStmt.ExecContext(ctx, file.ID, row.RowIndex, string(row.RowType)); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", row.RowIndex, err)
			}
		}

		colStmt, err := tx.PreparexContext(ctx, tx.Rebind(
			`INSERT INTO table_columns (csv_file_id, column_index, column_type) VALUES (?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare column insert: %w", err)
		}
		defer colStmt.Close()
		for _, col := range file.Columns {
			if _, err := colStmt.ExecContext(ctx, file.ID, col.ColumnIndex, string(col.ColumnType)); err != nil {
				return fmt.Errorf("failed to insert column %d: %w", col.ColumnIndex, err)
			}
		}
		return nil
	})
}

// GetCSVFile loads an upload with its labels ordered by index
func (s *Store) GetCSVFile(ctx context.Context, id string) (*domain.CSVFile, error) {
	file := &domain.CSVFile{}
	err := s.db.GetContext(ctx, file, s.db.Rebind(
		`SELECT id, name, table_data, checksum, size, created_at, updated_at
		 FROM csv_files WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err, "csv file", id)
	}

	if err := s.db.SelectContext(ctx, &file.Rows, s.db.Rebind(
		`SELECT csv_file_id, row_index, row_type FROM table_rows
		 WHERE csv_file_id = ? ORDER BY row_index`), id); err != nil {
		return nil, fmt.Errorf("failed to load rows of %s: %w", id, err)
	}

	if err := s.db.SelectContext(ctx, &file.Columns, s.db.Rebind(
		`SELECT csv_file_id, column_index, column_type FROM table_columns
		 WHERE csv_file_id = ? ORDER BY column_index`), id); err != nil {
		return nil, fmt.Errorf("failed to load columns of %s: %w", id, err)
	}

	return file, nil
}

// ListCSVFiles returns upload summaries ordered by creation time
func (s *Store) ListCSVFiles(ctx context.Context, opts ListOptions) ([]domain.CSVFileSummary, error) {
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}

	query := fmt.Sprintf(
		`SELECT f.id, f.name, f.checksum, f.size, f.created_at, f.updated_at,
		        CASE WHEN v.csv_file_id IS NULL THEN 0 ELSE 1 END AS validated
		 FROM csv_files f
		 LEFT JOIN validated_tables v ON v.csv_file_id = f.id
		 ORDER BY f.created_at %s, f.id %s
		 LIMIT ? OFFSET ?`, direction, direction)

	summaries := []domain.CSVFileSummary{}
	if err := s.db.SelectContext(ctx, &summaries, s.db.Rebind(query), limit, opts.Offset); err != nil {
		return nil, fmt.Errorf("failed to list csv files: %w", err)
	}
	return summaries, nil
}

// DeleteCSVFile removes an upload together with its labels and validated table
func (s *Store) DeleteCSVFile(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"validated_tables", "table_rows", "table_columns"} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(
				fmt.Sprintf(`DELETE FROM %s WHERE csv_file_id = ?`, table)), id); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM csv_files WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete csv file: %w", err)
		}
		return requireAffected(res, "csv file", id)
	})
}

// UpdateRowType relabels one row. Assigning the key type demotes the
// current key row to domain.DefaultRowType.
func (s *Store) UpdateRowType(ctx context.Context, id string, index int, rowType domain.RowType) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if rowType == domain.RowTypeKey {
			if _, err := tx.ExecContext(ctx, tx.Rebind(
				`UPDATE table_rows SET row_type = ?
				 WHERE csv_file_id = ? AND row_type = ? AND row_index <> ?`),
				string(domain.DefaultRowType), id, string(domain.RowTypeKey), index); err != nil {
				return fmt.Errorf("failed to demote key row: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE table_rows SET row_type = ? WHERE csv_file_id = ? AND row_index = ?`),
			string(rowType), id, index)
		if err != nil {
			return fmt.Errorf("failed to update row %d: %w", index, err)
		}
		if err := requireAffected(res, "row", fmt.Sprintf("%s/%d", id, index)); err != nil {
			return err
		}
		return s.touch(ctx, tx, id)
	})
}

// UpdateColumnType relabels one column. Assigning the key type demotes the
// current key column to domain.DefaultColumnType.
func (s *Store) UpdateColumnType(ctx context.Context, id string, index int, columnType domain.ColumnType) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if columnType == domain.ColumnTypeKey {
			if _, err := tx.ExecContext(ctx, tx.Rebind(
				`UPDATE table_columns SET column_type = ?
				 WHERE csv_file_id = ? AND column_type = ? AND column_index <> ?`),
				string(domain.DefaultColumnType), id, string(domain.ColumnTypeKey), index); err != nil {
				return fmt.Errorf("failed to demote key column: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE table_columns SET column_type = ? WHERE csv_file_id = ? AND column_index = ?`),
			string(columnType), id, index)
		if err != nil {
			return fmt.Errorf("failed to update column %d: %w", index, err)
		}
		if err := requireAffected(res, "column", fmt.Sprintf("%s/%d", id, index)); err != nil {
			return err
		}
		return s.touch(ctx, tx, id)
	})
}

func (s *Store) touch(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE csv_files SET updated_at = ? WHERE id = ?`), s.now(), id); err != nil {
		return fmt.Errorf("failed to touch csv file: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"metabulo/pkg/contracts/domain"
)

// stepColumns maps a step kind to its method and argument columns
var stepColumns = map[domain.StepKind][2]string{
	domain.StepNormalization:  {"normalization", "normalization_argument"},
	domain.StepTransformation: {"transformation", "transformation_argument"},
	domain.StepScaling:        {"scaling", "scaling_argument"},
}

// SaveValidatedTable inserts or replaces the validated snapshot of an
// upload, including its processing methods
func (s *Store) SaveValidatedTable(ctx context.Context, v *domain.ValidatedTable) error {
	now := s.now()
	v.UpdatedAt = now
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO validated_tables (
			csv_file_id, measurements, metadata, sample_count, measurement_count, missing_cells,
			normalization, normalization_argument, transformation, transformation_argument,
			scaling, scaling_argument, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (csv_file_id) DO UPDATE SET
			measurements = excluded.measurements,
			metadata = excluded.metadata,
			sample_count = excluded.sample_count,
			measurement_count = excluded.measurement_count,
			missing_cells = excluded.missing_cells,
			normalization = excluded.normalization,
			normalization_argument = excluded.normalization_argument,
			transformation = excluded.transformation,
			transformation_argument = excluded.transformation_argument,
			scaling = excluded.scaling,
			scaling_argument = excluded.scaling_argument,
			updated_at = excluded.updated_at`),
		v.CSVFileID, v.Measurements, v.Metadata, v.SampleCount, v.MeasurementCount, v.MissingCells,
		nullable(v.Normalization), nullable(v.NormalizationArgument),
		nullable(v.Transformation), nullable(v.TransformationArgument),
		nullable(v.Scaling), nullable(v.ScalingArgument),
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save validated table %s: %w", v.CSVFileID, err)
	}
	return nil
}

// GetValidatedTable loads the validated snapshot of an upload
func (s *Store) GetValidatedTable(ctx context.Context, id string) (*domain.ValidatedTable, error) {
	v := &domain.ValidatedTable{}
	err := s.db.GetContext(ctx, v, s.db.Rebind(
		`SELECT csv_file_id, measurements, metadata, sample_count, measurement_count, missing_cells,
		        normalization, normalization_argument, transformation, transformation_argument,
		        scaling, scaling_argument, created_at, updated_at
		 FROM validated_tables WHERE csv_file_id = ?`), id)
	if err != nil {
		return nil, notFound(err, "validated table", id)
	}
	return v, nil
}

// UpdateProcessingStep sets or clears the method of one step
func (s *Store) UpdateProcessingStep(ctx context.Context, id string, step domain.ProcessingStep) error {
	cols, ok := stepColumns[step.Kind]
	if !ok {
		return fmt.Errorf("unknown processing step %q", step.Kind)
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf(
			`UPDATE validated_tables SET %s = ?, %s = ?, updated_at = ? WHERE csv_file_id = ?`,
			cols[0], cols[1])),
			nullable(step.Method), nullable(step.Argument), s.now(), id)
		if err != nil {
			return fmt.Errorf("failed to update %s of %s: %w", step.Kind, id, err)
		}
		return requireAffected(res, "validated table", id)
	})
}

// nullable turns an optional string into a driver value
func nullable(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

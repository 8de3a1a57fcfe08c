package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aklerup/keyline/internal/models"
)

// Project repository errors.
var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectAlreadyExists = errors.New("project with this name already exists")
)

// ProjectRepository handles project persistence. A save replaces the
// project's segment set wholesale; segments have no identity across
// saves beyond their stored IDs.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project with its segments.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	err := r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, duration, audio_file_ref, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			project.ID,
			project.Name,
			project.Duration,
			nullableString(project.AudioFileRef),
			project.CreatedAt.Format(time.RFC3339),
			project.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return err
		}
		return r.insertSegments(ctx, tx, project)
	})

	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrProjectAlreadyExists
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// Update overwrites a project's metadata and replaces its segments.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	project.UpdatedAt = time.Now().UTC()

	err := r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE projects
			SET name = ?, duration = ?, audio_file_ref = ?, updated_at = ?
			WHERE id = ?
		`,
			project.Name,
			project.Duration,
			nullableString(project.AudioFileRef),
			project.UpdatedAt.Format(time.RFC3339),
			project.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrProjectNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE project_id = ?`, project.ID); err != nil {
			return err
		}
		return r.insertSegments(ctx, tx, project)
	})

	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		if isUniqueConstraintError(err) {
			return ErrProjectAlreadyExists
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) insertSegments(ctx context.Context, tx *sql.Tx, project *models.Project) error {
	for i, s := range project.Segments {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO segments (
				id, project_id, position, track_index, start_time, end_time,
				name, kind, color, description, locked, visible
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.ID,
			project.ID,
			i,
			s.TrackIndex,
			s.StartTime,
			s.EndTime,
			s.Name,
			string(s.Kind),
			s.Color,
			nullableString(s.Description),
			boolToInt(s.Locked),
			boolToInt(!s.Hidden),
		)
		if err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", i, err)
		}
	}
	return nil
}

// Get retrieves a project with its segments by ID.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, duration, audio_file_ref, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)

	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	segments, err := r.loadSegments(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Segments = segments
	return project, nil
}

// GetByName retrieves a project with its segments by name.
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, duration, audio_file_ref, created_at, updated_at
		FROM projects
		WHERE name = ?
	`, name)

	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	segments, err := r.loadSegments(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Segments = segments
	return project, nil
}

// List retrieves all projects ordered by name, without segments.
func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, duration, audio_file_ref, created_at, updated_at
		FROM projects
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProjectFromRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// Delete removes a project and its segments.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) loadSegments(ctx context.Context, projectID string) ([]*models.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, track_index, start_time, end_time, name, kind, color, description, locked, visible
		FROM segments
		WHERE project_id = ?
		ORDER BY position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []*models.Segment
	for rows.Next() {
		var s models.Segment
		var kind string
		var description sql.NullString
		var locked, visible int

		if err := rows.Scan(
			&s.ID,
			&s.TrackIndex,
			&s.StartTime,
			&s.EndTime,
			&s.Name,
			&kind,
			&s.Color,
			&description,
			&locked,
			&visible,
		); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}

		s.Kind = models.SegmentKind(kind)
		s.Description = description.String
		s.Locked = locked != 0
		s.Hidden = visible == 0
		segments = append(segments, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segments: %w", err)
	}
	return segments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row *sql.Row) (*models.Project, error) {
	project, err := scanProjectFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func scanProjectFromRows(rows *sql.Rows) (*models.Project, error) {
	return scanProjectFields(rows)
}

func scanProjectFields(scanner rowScanner) (*models.Project, error) {
	var project models.Project
	var audioFileRef sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&project.ID,
		&project.Name,
		&project.Duration,
		&audioFileRef,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	project.AudioFileRef = audioFileRef.String

	createdParsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedParsed, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	project.CreatedAt = createdParsed
	project.UpdatedAt = updatedParsed

	return &project, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

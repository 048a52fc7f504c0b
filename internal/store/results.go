package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/calidad-labs/audit-compliance-backend/internal/audit"
)

// ─── WRITE OPERATIONS ────────────────────────────────────────────────────────

// CreateResult inserts a freshly assembled result and all its section rows
// atomically. The result ID must be new; a duplicate submission gets a
// fresh UUID from the assembler, so a primary-key conflict here indicates a
// caller bug, not a retry.
func (s *Store) CreateResult(ctx context.Context, res audit.Result) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := insertResult(ctx, tx, res); err != nil {
			return fmt.Errorf("CreateResult: %w", err)
		}
		if err := insertSections(ctx, tx, res); err != nil {
			return fmt.Errorf("CreateResult: %w", err)
		}
		return nil
	})
}

// ReplaceResult fully replaces a stored result under the same ID: the
// result row is updated and every section row is deleted and rewritten.
// There are no partial-patch semantics for nested scores. Returns
// ErrNotFound when no row exists for the ID.
func (s *Store) ReplaceResult(ctx context.Context, res audit.Result) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sectionTitles, subsectionTitles, err := marshalTitles(res)
		if err != nil {
			return fmt.Errorf("ReplaceResult: %w", err)
		}

		tag, err := tx.ExecContext(ctx, `
			UPDATE audit_results
			SET program = $2,
			    audit_date = $3,
			    completion_percentage = $4,
			    section_titles = $5,
			    subsection_titles = $6,
			    updated_at = now()
			WHERE id = $1`,
			res.ID, res.Program, res.AuditDate, res.CompletionPercentage,
			sectionTitles, subsectionTitles,
		)
		if err != nil {
			return fmt.Errorf("ReplaceResult: update result: %w", err)
		}
		affected, err := tag.RowsAffected()
		if err != nil {
			return fmt.Errorf("ReplaceResult: rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM audit_sections WHERE audit_id = $1`, res.ID,
		); err != nil {
			return fmt.Errorf("ReplaceResult: clear sections: %w", err)
		}

		if err := insertSections(ctx, tx, res); err != nil {
			return fmt.Errorf("ReplaceResult: %w", err)
		}
		return nil
	})
}

// DeleteResult removes a result and, via cascade, its section rows.
// Returns ErrNotFound when no row exists for the ID.
func (s *Store) DeleteResult(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.ExecContext(ctx,
		`DELETE FROM audit_results WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("DeleteResult: %w", err)
	}
	affected, err := tag.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteResult: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── READ OPERATIONS ─────────────────────────────────────────────────────────

// GetResult loads one stored result with all its sections.
func (s *Store) GetResult(ctx context.Context, id uuid.UUID) (audit.Result, error) {
	res, err := scanResult(s.pool.QueryRowContext(ctx, `
		SELECT id, program, audit_date, completion_percentage,
		       section_titles, subsection_titles
		FROM audit_results
		WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Result{}, ErrNotFound
	}
	if err != nil {
		return audit.Result{}, fmt.Errorf("GetResult: %w", err)
	}

	rows, err := s.pool.QueryContext(ctx, `
		SELECT audit_id, section_id, title, completion_percentage, questions
		FROM audit_sections
		WHERE audit_id = $1`, id,
	)
	if err != nil {
		return audit.Result{}, fmt.Errorf("GetResult: query sections: %w", err)
	}
	defer rows.Close()

	res.Sections = make(map[string]audit.SectionRecord)
	for rows.Next() {
		_, sectionID, rec, err := scanSection(rows)
		if err != nil {
			return audit.Result{}, fmt.Errorf("GetResult: %w", err)
		}
		res.Sections[sectionID] = rec
	}
	if err := rows.Err(); err != nil {
		return audit.Result{}, fmt.Errorf("GetResult: iterate sections: %w", err)
	}

	return res, nil
}

// ListResults loads every stored result with its sections, newest audit
// first. The dashboard recomputes scores over the full documents, so the
// summary endpoints need the section trees, not just the header rows.
func (s *Store) ListResults(ctx context.Context) ([]audit.Result, error) {
	rows, err := s.pool.QueryContext(ctx, `
		SELECT id, program, audit_date, completion_percentage,
		       section_titles, subsection_titles
		FROM audit_results
		ORDER BY audit_date DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListResults: query results: %w", err)
	}
	defer rows.Close()

	var results []audit.Result
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("ListResults: %w", err)
		}
		res.Sections = make(map[string]audit.SectionRecord)
		index[res.ID] = len(results)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListResults: iterate results: %w", err)
	}

	sectionRows, err := s.pool.QueryContext(ctx, `
		SELECT audit_id, section_id, title, completion_percentage, questions
		FROM audit_sections`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListResults: query sections: %w", err)
	}
	defer sectionRows.Close()

	for sectionRows.Next() {
		auditID, sectionID, rec, err := scanSection(sectionRows)
		if err != nil {
			return nil, fmt.Errorf("ListResults: %w", err)
		}
		if i, ok := index[auditID]; ok {
			results[i].Sections[sectionID] = rec
		}
	}
	if err := sectionRows.Err(); err != nil {
		return nil, fmt.Errorf("ListResults: iterate sections: %w", err)
	}

	return results, nil
}

// ─── ROW HELPERS ─────────────────────────────────────────────────────────────

// insertResult writes the audit_results header row.
func insertResult(ctx context.Context, tx *sql.Tx, res audit.Result) error {
	sectionTitles, subsectionTitles, err := marshalTitles(res)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_results
			(id, program, audit_date, completion_percentage,
			 section_titles, subsection_titles)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.Program, res.AuditDate, res.CompletionPercentage,
		sectionTitles, subsectionTitles,
	); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// insertSections writes one audit_sections row per section, with the
// question map serialised as JSONB.
func insertSections(ctx context.Context, tx *sql.Tx, res audit.Result) error {
	for sectionID, rec := range res.Sections {
		questions, err := json.Marshal(rec.Questions)
		if err != nil {
			return fmt.Errorf("marshal questions for section %q: %w", sectionID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audit_sections
				(audit_id, section_id, title, completion_percentage, questions)
			VALUES ($1, $2, $3, $4, $5)`,
			res.ID, sectionID, rec.Title, rec.CompletionPercentage,
			pqtype.NullRawMessage{RawMessage: questions, Valid: true},
		); err != nil {
			return fmt.Errorf("insert section %q: %w", sectionID, err)
		}
	}
	return nil
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanResult reads an audit_results row into a Result header (Sections left
// nil for the caller to fill).
func scanResult(row scannable) (audit.Result, error) {
	var (
		res              audit.Result
		auditDate        time.Time
		sectionTitles    pqtype.NullRawMessage
		subsectionTitles pqtype.NullRawMessage
	)
	if err := row.Scan(
		&res.ID, &res.Program, &auditDate, &res.CompletionPercentage,
		&sectionTitles, &subsectionTitles,
	); err != nil {
		return audit.Result{}, err
	}
	res.AuditDate = auditDate.UTC()

	if sectionTitles.Valid {
		if err := json.Unmarshal(sectionTitles.RawMessage, &res.SectionTitles); err != nil {
			return audit.Result{}, fmt.Errorf("unmarshal section titles: %w", err)
		}
	}
	if subsectionTitles.Valid {
		if err := json.Unmarshal(subsectionTitles.RawMessage, &res.SubsectionTitles); err != nil {
			return audit.Result{}, fmt.Errorf("unmarshal subsection titles: %w", err)
		}
	}
	return res, nil
}

// scanSection reads an audit_sections row.
func scanSection(row scannable) (uuid.UUID, string, audit.SectionRecord, error) {
	var (
		auditID   uuid.UUID
		sectionID string
		rec       audit.SectionRecord
		questions pqtype.NullRawMessage
	)
	if err := row.Scan(
		&auditID, &sectionID, &rec.Title, &rec.CompletionPercentage, &questions,
	); err != nil {
		return uuid.UUID{}, "", audit.SectionRecord{}, fmt.Errorf("scan section: %w", err)
	}
	if questions.Valid {
		if err := json.Unmarshal(questions.RawMessage, &rec.Questions); err != nil {
			return uuid.UUID{}, "", audit.SectionRecord{}, fmt.Errorf("unmarshal questions for section %q: %w", sectionID, err)
		}
	}
	return auditID, sectionID, rec, nil
}

// marshalTitles serialises the optional title maps, mapping empty to SQL
// NULL so stored documents round-trip the omitempty JSON shape exactly.
func marshalTitles(res audit.Result) (pqtype.NullRawMessage, pqtype.NullRawMessage, error) {
	var sectionTitles, subsectionTitles pqtype.NullRawMessage

	if len(res.SectionTitles) > 0 {
		b, err := json.Marshal(res.SectionTitles)
		if err != nil {
			return sectionTitles, subsectionTitles, fmt.Errorf("marshal section titles: %w", err)
		}
		sectionTitles = pqtype.NullRawMessage{RawMessage: b, Valid: true}
	}
	if len(res.SubsectionTitles) > 0 {
		b, err := json.Marshal(res.SubsectionTitles)
		if err != nil {
			return sectionTitles, subsectionTitles, fmt.Errorf("marshal subsection titles: %w", err)
		}
		subsectionTitles = pqtype.NullRawMessage{RawMessage: b, Valid: true}
	}
	return sectionTitles, subsectionTitles, nil
}

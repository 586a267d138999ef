package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"costos/internal/platform/querier"
)

// Store scopes every query to the owning company.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const jobColumns = `id, company_id, COALESCE(created_by::text, ''), to_char(date, 'YYYY-MM-DD'), file_number, client,
           description, partidas, lotes_finales, contribution_copa, contribution_caja,
           deeds, filings, urgent_certificate, title_study, georeferencing, summons, travel,
           assistant, draftsman, printing, markers, agent, special_insurance, instrument_rental, other,
           created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	f := &j.Fees
	err := row.Scan(&j.ID, &j.CompanyID, &j.CreatedBy, &j.Date, &j.FileNumber, &j.Client,
		&j.Description, &j.Partidas, &j.LotesFinales, &j.ContributionCopa, &j.ContributionCaja,
		&f.Deeds, &f.Filings, &f.UrgentCertificate, &f.TitleStudy, &f.Georeferencing, &f.Summons, &f.Travel,
		&f.Assistant, &f.Draftsman, &f.Printing, &f.Markers, &f.Agent, &f.SpecialInsurance, &f.InstrumentRental, &f.Other,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) List(ctx context.Context, companyID string, filter ListFilter) ([]Summary, error) {
	query := `
    SELECT j.id, to_char(j.date, 'YYYY-MM-DD'), j.file_number, j.client,
           COALESCE((SELECT SUM(a.hours) FROM job_actuantes a WHERE a.job_id = j.id), 0),
           j.created_at
    FROM jobs j
    WHERE j.company_id = $1`
	args := []any{companyID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND j.date >= $%d::date", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND j.date <= $%d::date", len(args))
	}
	if filter.Client != "" {
		args = append(args, "%"+filter.Client+"%")
		query += fmt.Sprintf(" AND j.client ILIKE $%d", len(args))
	}
	query += " ORDER BY j.date DESC, j.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Date, &sum.FileNumber, &sum.Client, &sum.TotalHours, &sum.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// IDs lists every job of the company, newest first.
func (s *Store) IDs(ctx context.Context, companyID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM jobs WHERE company_id = $1 ORDER BY date DESC, created_at DESC", companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Get(ctx context.Context, companyID, id string) (*Job, error) {
	j, err := scanJob(s.DB.QueryRow(ctx, `
    SELECT `+jobColumns+`
    FROM jobs
    WHERE company_id = $1 AND id = $2
  `, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadAssignments(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// loadAssignments orders each collection by descending quantity, then by
// the referenced name.
func (s *Store) loadAssignments(ctx context.Context, j *Job) error {
	rows, err := s.DB.Query(ctx, `
    SELECT a.user_id, COALESCE(NULLIF(trim(u.last_name || ', ' || u.first_name, ', '), ''), u.username), a.hours
    FROM job_actuantes a
    JOIN users u ON u.id = a.user_id
    WHERE a.job_id = $1
    ORDER BY a.hours DESC, u.last_name, u.first_name, u.username
  `, j.ID)
	if err != nil {
		return err
	}
	j.Actuantes = []Actuante{}
	for rows.Next() {
		var a Actuante
		if err := rows.Scan(&a.UserID, &a.Name, &a.Hours); err != nil {
			rows.Close()
			return err
		}
		j.Actuantes = append(j.Actuantes, a)
	}
	rows.Close()

	rows, err = s.DB.Query(ctx, `
    SELECT m.vehicle_id, v.name, m.km
    FROM job_vehicles m
    JOIN vehicles v ON v.id = m.vehicle_id
    WHERE m.job_id = $1
    ORDER BY m.km DESC, v.name
  `, j.ID)
	if err != nil {
		return err
	}
	j.Movilidad = []Movilidad{}
	for rows.Next() {
		var m Movilidad
		if err := rows.Scan(&m.VehicleID, &m.Name, &m.Km); err != nil {
			rows.Close()
			return err
		}
		j.Movilidad = append(j.Movilidad, m)
	}
	rows.Close()

	rows, err = s.DB.Query(ctx, `
    SELECT i.instrument_id, ins.name, i.workdays
    FROM job_instruments i
    JOIN instruments ins ON ins.id = i.instrument_id
    WHERE i.job_id = $1
    ORDER BY i.workdays DESC, ins.name
  `, j.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	j.Instrumental = []Instrumental{}
	for rows.Next() {
		var i Instrumental
		if err := rows.Scan(&i.InstrumentID, &i.Name, &i.Workdays); err != nil {
			return err
		}
		j.Instrumental = append(j.Instrumental, i)
	}
	return rows.Err()
}

// Create saves the job and its three assignment collections in one
// transaction.
func (s *Store) Create(ctx context.Context, companyID, createdBy string, in Input) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := checkReferences(ctx, tx, companyID, in); err != nil {
		return "", err
	}
	f := in.Fees
	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO jobs (company_id, created_by, date, file_number, client, description, partidas, lotes_finales,
                      contribution_copa, contribution_caja, deeds, filings, urgent_certificate, title_study,
                      georeferencing, summons, travel, assistant, draftsman, printing, markers, agent,
                      special_insurance, instrument_rental, other)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
    RETURNING id
  `, companyID, nullIfEmpty(createdBy), in.Date, strings.TrimSpace(in.FileNumber), strings.TrimSpace(in.Client),
		strings.TrimSpace(in.Description), in.partidas(), in.lotesFinales(), in.contributionCopa(), in.contributionCaja(),
		f.Deeds, f.Filings, f.UrgentCertificate, f.TitleStudy, f.Georeferencing, f.Summons, f.Travel,
		f.Assistant, f.Draftsman, f.Printing, f.Markers, f.Agent, f.SpecialInsurance, f.InstrumentRental, f.Other).Scan(&id)
	if err != nil {
		return "", err
	}
	if err := insertAssignments(ctx, tx, id, in); err != nil {
		return "", err
	}
	return id, tx.Commit(ctx)
}

// Update overwrites the job and replaces every assignment. Concurrent
// edits are last write wins.
func (s *Store) Update(ctx context.Context, companyID, id string, in Input) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := checkReferences(ctx, tx, companyID, in); err != nil {
		return err
	}
	f := in.Fees
	tag, err := tx.Exec(ctx, `
    UPDATE jobs
    SET date = $3, file_number = $4, client = $5, description = $6, partidas = $7, lotes_finales = $8,
        contribution_copa = $9, contribution_caja = $10, deeds = $11, filings = $12, urgent_certificate = $13,
        title_study = $14, georeferencing = $15, summons = $16, travel = $17, assistant = $18, draftsman = $19,
        printing = $20, markers = $21, agent = $22, special_insurance = $23, instrument_rental = $24, other = $25,
        updated_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, id, in.Date, strings.TrimSpace(in.FileNumber), strings.TrimSpace(in.Client),
		strings.TrimSpace(in.Description), in.partidas(), in.lotesFinales(), in.contributionCopa(), in.contributionCaja(),
		f.Deeds, f.Filings, f.UrgentCertificate, f.TitleStudy, f.Georeferencing, f.Summons, f.Travel,
		f.Assistant, f.Draftsman, f.Printing, f.Markers, f.Agent, f.SpecialInsurance, f.InstrumentRental, f.Other)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	for _, table := range []string{"job_actuantes", "job_vehicles", "job_instruments"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE job_id = $1", id); err != nil {
			return err
		}
	}
	if err := insertAssignments(ctx, tx, id, in); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM jobs WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertAssignments(ctx context.Context, q querier.Querier, jobID string, in Input) error {
	for _, a := range in.Actuantes {
		if _, err := q.Exec(ctx, "INSERT INTO job_actuantes (job_id, user_id, hours) VALUES ($1, $2, $3)", jobID, a.UserID, a.Hours); err != nil {
			return err
		}
	}
	for _, m := range in.Movilidad {
		if _, err := q.Exec(ctx, "INSERT INTO job_vehicles (job_id, vehicle_id, km) VALUES ($1, $2, $3)", jobID, m.VehicleID, m.Km); err != nil {
			return err
		}
	}
	for _, i := range in.Instrumental {
		if _, err := q.Exec(ctx, "INSERT INTO job_instruments (job_id, instrument_id, workdays) VALUES ($1, $2, $3)", jobID, i.InstrumentID, i.Workdays); err != nil {
			return err
		}
	}
	return nil
}

// checkReferences rejects assignments to entities of another company.
func checkReferences(ctx context.Context, q querier.Querier, companyID string, in Input) error {
	checks := []struct {
		field string
		query string
		ids   []string
	}{
		{"actuantes", "SELECT COUNT(DISTINCT id) FROM users WHERE company_id = $1 AND id::text = ANY($2)", actuanteIDs(in)},
		{"movilidad", "SELECT COUNT(DISTINCT id) FROM vehicles WHERE company_id = $1 AND id::text = ANY($2)", vehicleIDs(in)},
		{"instrumental", "SELECT COUNT(DISTINCT id) FROM instruments WHERE company_id = $1 AND id::text = ANY($2)", instrumentIDs(in)},
	}
	for _, c := range checks {
		if len(c.ids) == 0 {
			continue
		}
		var found int
		if err := q.QueryRow(ctx, c.query, companyID, c.ids).Scan(&found); err != nil {
			return err
		}
		if found != len(c.ids) {
			return &ReferenceError{Field: c.field}
		}
	}
	return nil
}

func actuanteIDs(in Input) []string {
	out := make([]string, 0, len(in.Actuantes))
	for _, a := range in.Actuantes {
		out = append(out, strings.ToLower(a.UserID))
	}
	return out
}

func vehicleIDs(in Input) []string {
	out := make([]string, 0, len(in.Movilidad))
	for _, m := range in.Movilidad {
		out = append(out, strings.ToLower(m.VehicleID))
	}
	return out
}

func instrumentIDs(in Input) []string {
	out := make([]string, 0, len(in.Instrumental))
	for _, i := range in.Instrumental {
		out = append(out, strings.ToLower(i.InstrumentID))
	}
	return out
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

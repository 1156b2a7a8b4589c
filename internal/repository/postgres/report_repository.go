package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
)

type reportRepo struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepo{db: db}
}

// Colunas na ordem canônica usada por INSERT e SELECT
const reportColumns = `id, number, status, priority, created_by, assigned_to, assigned_at, deadline,
	COALESCE(oficio, ''), COALESCE(orgao_requisitante, ''), COALESCE(autoridade_requisitante, ''),
	COALESCE(guia_oficio, ''), data_guia_oficio, COALESCE(ocorrencia_policial, ''),
	COALESCE(objetivo_pericia, ''), COALESCE(preambulo, ''), COALESCE(historico, ''),
	COALESCE(placa_portada, ''), COALESCE(especie_tipo, ''), COALESCE(vidro, ''),
	COALESCE(outras_numeracoes, ''),
	COALESCE(location_address, ''), COALESCE(location_city, ''), COALESCE(location_state, ''),
	location_lat, location_lng, COALESCE(location_h3_cell, ''),
	COALESCE(vehicle_plate, ''), COALESCE(vehicle_chassi, ''), COALESCE(vehicle_vin, ''),
	COALESCE(vehicle_motor, ''), COALESCE(vehicle_serie_motor, ''), COALESCE(vehicle_brand, ''),
	COALESCE(vehicle_model, ''), COALESCE(vehicle_year, 0), COALESCE(vehicle_category, ''),
	COALESCE(vehicle_color, ''), vehicle_is_cloned, vehicle_is_adulterated,
	COALESCE(vehicle_licensed_to, ''), COALESCE(vehicle_technical_condition, ''),
	COALESCE(glass_info, ''), COALESCE(plate_info, ''), COALESCE(motor_info, ''),
	COALESCE(central_eletronica_info, ''), COALESCE(series_auxiliares, ''),
	analysis_is_conclusive, COALESCE(analysis_conclusion, ''),
	COALESCE(analysis_justification, ''), COALESCE(analysis_observations, ''),
	COALESCE(expert_signature, ''), created_at, updated_at`

func scanReport(row interface {
	Scan(dest ...interface{}) error
}) (*entity.Report, error) {
	r := &entity.Report{}
	var (
		assignedTo     sql.NullString
		assignedAt     sql.NullTime
		deadline       sql.NullTime
		dataGuiaOficio sql.NullTime
		lat, lng       sql.NullFloat64
		isConclusive   sql.NullBool
	)

	err := row.Scan(
		&r.ID, &r.Number, &r.Status, &r.Priority, &r.CreatedBy, &assignedTo, &assignedAt, &deadline,
		&r.Requisition.Oficio, &r.Requisition.OrgaoRequisitante, &r.Requisition.AutoridadeRequisitante,
		&r.Requisition.GuiaOficio, &dataGuiaOficio, &r.Requisition.OcorrenciaPolicial,
		&r.Requisition.ObjetivoPericia, &r.Requisition.Preambulo, &r.Requisition.Historico,
		&r.Requisition.PlacaPortada, &r.Requisition.EspecieTipo, &r.Requisition.Vidro,
		&r.Requisition.OutrasNumeracoes,
		&r.Location.Address, &r.Location.City, &r.Location.State,
		&lat, &lng, &r.Location.H3Cell,
		&r.Vehicle.Plate, &r.Vehicle.Chassi, &r.Vehicle.VIN,
		&r.Vehicle.Motor, &r.Vehicle.SerieMotor, &r.Vehicle.Brand,
		&r.Vehicle.Model, &r.Vehicle.Year, &r.Vehicle.Category,
		&r.Vehicle.Color, &r.Vehicle.IsCloned, &r.Vehicle.IsAdulterated,
		&r.Vehicle.LicensedTo, &r.Vehicle.TechnicalCondition,
		&r.Info.GlassInfo, &r.Info.PlateInfo, &r.Info.MotorInfo,
		&r.Info.CentralEletronicaInfo, &r.Info.SeriesAuxiliares,
		&isConclusive, &r.Analysis.Conclusion,
		&r.Analysis.Justification, &r.Analysis.Observations,
		&r.ExpertSignature, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		r.AssignedTo = &assignedTo.String
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		r.AssignedAt = &t
	}
	if deadline.Valid {
		t := deadline.Time
		r.Deadline = &t
	}
	if dataGuiaOficio.Valid {
		t := dataGuiaOficio.Time
		r.Requisition.DataGuiaOficio = &t
	}
	if lat.Valid {
		v := lat.Float64
		r.Location.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		r.Location.Lng = &v
	}
	if isConclusive.Valid {
		v := isConclusive.Bool
		r.Analysis.IsConclusive = &v
	}

	return r, nil
}

func (r *reportRepo) NextSequence(ctx context.Context, day string, dept entity.Department) (int, error) {
	// Incremento atômico no banco: duas criações concorrentes no mesmo
	// dia/departamento nunca recebem a mesma sequência.
	query := `INSERT INTO report_counters (day, department, seq) VALUES ($1, $2, 1)
	          ON CONFLICT (day, department) DO UPDATE SET seq = report_counters.seq + 1
	          RETURNING seq`
	var seq int
	if err := r.db.QueryRowContext(ctx, query, day, dept).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to increment report counter: %w", err)
	}
	return seq, nil
}

func insertAuditTx(ctx context.Context, tx *sql.Tx, entry entity.AuditLog) error {
	query := `INSERT INTO report_audit_logs (id, report_id, action, user_id, user_name, details, timestamp)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		entry.ID, entry.ReportID, entry.Action, entry.UserID, entry.UserName, entry.Details, entry.Timestamp)
	return err
}

func (r *reportRepo) CreateWithAudit(ctx context.Context, report *entity.Report, entries []entity.AuditLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO reports (
		id, number, status, priority, created_by, assigned_to, assigned_at, deadline,
		oficio, orgao_requisitante, autoridade_requisitante, guia_oficio, data_guia_oficio,
		ocorrencia_policial, objetivo_pericia, preambulo, historico, placa_portada,
		especie_tipo, vidro, outras_numeracoes,
		location_address, location_city, location_state, location_lat, location_lng, location_h3_cell,
		vehicle_plate, vehicle_chassi, vehicle_vin, vehicle_motor, vehicle_serie_motor,
		vehicle_brand, vehicle_model, vehicle_year, vehicle_category, vehicle_color,
		vehicle_is_cloned, vehicle_is_adulterated, vehicle_licensed_to, vehicle_technical_condition,
		glass_info, plate_info, motor_info, central_eletronica_info, series_auxiliares,
		analysis_is_conclusive, analysis_conclusion, analysis_justification, analysis_observations,
		expert_signature, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
		$22, $23, $24, $25, $26, $27,
		$28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41,
		$42, $43, $44, $45, $46,
		$47, $48, $49, $50, $51, $52, $53
	)`

	_, err = tx.ExecContext(ctx, query,
		report.ID, report.Number, report.Status, report.Priority, report.CreatedBy,
		report.AssignedTo, report.AssignedAt, report.Deadline,
		report.Requisition.Oficio, report.Requisition.OrgaoRequisitante,
		report.Requisition.AutoridadeRequisitante, report.Requisition.GuiaOficio,
		report.Requisition.DataGuiaOficio, report.Requisition.OcorrenciaPolicial,
		report.Requisition.ObjetivoPericia, report.Requisition.Preambulo,
		report.Requisition.Historico, report.Requisition.PlacaPortada,
		report.Requisition.EspecieTipo, report.Requisition.Vidro,
		report.Requisition.OutrasNumeracoes,
		report.Location.Address, report.Location.City, report.Location.State,
		report.Location.Lat, report.Location.Lng, report.Location.H3Cell,
		report.Vehicle.Plate, report.Vehicle.Chassi, report.Vehicle.VIN,
		report.Vehicle.Motor, report.Vehicle.SerieMotor, report.Vehicle.Brand,
		report.Vehicle.Model, report.Vehicle.Year, report.Vehicle.Category,
		report.Vehicle.Color, report.Vehicle.IsCloned, report.Vehicle.IsAdulterated,
		report.Vehicle.LicensedTo, report.Vehicle.TechnicalCondition,
		report.Info.GlassInfo, report.Info.PlateInfo, report.Info.MotorInfo,
		report.Info.CentralEletronicaInfo, report.Info.SeriesAuxiliares,
		report.Analysis.IsConclusive, report.Analysis.Conclusion,
		report.Analysis.Justification, report.Analysis.Observations,
		report.ExpertSignature, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	for _, entry := range entries {
		if err := insertAuditTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to insert audit log: %w", err)
		}
	}

	return tx.Commit()
}

func (r *reportRepo) UpdateAssignmentWithAudit(ctx context.Context, report *entity.Report, entry entity.AuditLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE reports SET assigned_to = $1, assigned_at = $2, status = $3, updated_at = $4 WHERE id = $5`
	_, err = tx.ExecContext(ctx, query,
		report.AssignedTo, report.AssignedAt, report.Status, report.UpdatedAt, report.ID)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	if err := insertAuditTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return tx.Commit()
}

func (r *reportRepo) UpdateStatusWithAudit(ctx context.Context, id string, status entity.ReportStatus, entry entity.AuditLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE reports SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err := insertAuditTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return tx.Commit()
}

func (r *reportRepo) UpdateContentWithAudit(ctx context.Context, update repository.ContentUpdate, entry entity.AuditLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	report := update.Report
	query := `UPDATE reports SET
		priority = $1, deadline = $2,
		location_address = $3, location_city = $4, location_state = $5,
		location_lat = $6, location_lng = $7, location_h3_cell = $8,
		vehicle_plate = $9, vehicle_chassi = $10, vehicle_vin = $11,
		vehicle_motor = $12, vehicle_serie_motor = $13, vehicle_brand = $14,
		vehicle_model = $15, vehicle_year = $16, vehicle_category = $17,
		vehicle_color = $18, vehicle_is_cloned = $19, vehicle_is_adulterated = $20,
		vehicle_licensed_to = $21, vehicle_technical_condition = $22,
		glass_info = $23, plate_info = $24, motor_info = $25,
		central_eletronica_info = $26, series_auxiliares = $27,
		analysis_is_conclusive = $28, analysis_conclusion = $29,
		analysis_justification = $30, analysis_observations = $31,
		expert_signature = $32, updated_at = $33
	WHERE id = $34`

	_, err = tx.ExecContext(ctx, query,
		report.Priority, report.Deadline,
		report.Location.Address, report.Location.City, report.Location.State,
		report.Location.Lat, report.Location.Lng, report.Location.H3Cell,
		report.Vehicle.Plate, report.Vehicle.Chassi, report.Vehicle.VIN,
		report.Vehicle.Motor, report.Vehicle.SerieMotor, report.Vehicle.Brand,
		report.Vehicle.Model, report.Vehicle.Year, report.Vehicle.Category,
		report.Vehicle.Color, report.Vehicle.IsCloned, report.Vehicle.IsAdulterated,
		report.Vehicle.LicensedTo, report.Vehicle.TechnicalCondition,
		report.Info.GlassInfo, report.Info.PlateInfo, report.Info.MotorInfo,
		report.Info.CentralEletronicaInfo, report.Info.SeriesAuxiliares,
		report.Analysis.IsConclusive, report.Analysis.Conclusion,
		report.Analysis.Justification, report.Analysis.Observations,
		report.ExpertSignature, report.UpdatedAt,
		report.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report content: %w", err)
	}

	if update.ReplacePhotos {
		// Substituição integral do conjunto de fotos
		if _, err := tx.ExecContext(ctx, `DELETE FROM vehicle_photos WHERE report_id = $1`, report.ID); err != nil {
			return fmt.Errorf("failed to delete photos: %w", err)
		}
		photoQuery := `INSERT INTO vehicle_photos (id, report_id, category, subtype, photo_data, description, created_at)
		               VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for _, p := range update.Photos {
			if _, err := tx.ExecContext(ctx, photoQuery,
				p.ID, p.ReportID, p.Category, p.Subtype, p.PhotoData, p.Description, p.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert photo: %w", err)
			}
		}
	}

	if err := insertAuditTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return tx.Commit()
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadRelations(ctx, []*entity.Report{report}); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`

	var args []interface{}
	if filter.AssignedTo != "" {
		query += ` WHERE assigned_to = $1`
		args = append(args, filter.AssignedTo)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []entity.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*entity.Report, len(reports))
	for i := range reports {
		refs[i] = &reports[i]
	}
	if err := r.loadRelations(ctx, refs); err != nil {
		return nil, err
	}
	return reports, nil
}

// loadRelations popula criador, responsável, trilha de auditoria (mais
// recente primeiro) e fotos (mais antiga primeiro) dos laudos informados
func (r *reportRepo) loadRelations(ctx context.Context, reports []*entity.Report) error {
	if len(reports) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reports))
	userIDs := make([]string, 0, len(reports)*2)
	byID := make(map[string]*entity.Report, len(reports))
	for _, rep := range reports {
		ids = append(ids, rep.ID)
		byID[rep.ID] = rep
		userIDs = append(userIDs, rep.CreatedBy)
		if rep.AssignedTo != nil {
			userIDs = append(userIDs, *rep.AssignedTo)
		}
	}

	users, err := r.loadUsers(ctx, userIDs)
	if err != nil {
		return err
	}
	for _, rep := range reports {
		if u, ok := users[rep.CreatedBy]; ok {
			creator := u
			rep.Creator = &creator
		}
		if rep.AssignedTo != nil {
			if u, ok := users[*rep.AssignedTo]; ok {
				assignee := u
				rep.Assignee = &assignee
			}
		}
	}

	auditQuery := `SELECT id, report_id, action, user_id, user_name, COALESCE(details, ''), timestamp
	               FROM report_audit_logs WHERE report_id = ANY($1) ORDER BY timestamp DESC`
	auditRows, err := r.db.QueryContext(ctx, auditQuery, ids)
	if err != nil {
		return err
	}
	defer auditRows.Close()
	for auditRows.Next() {
		var log entity.AuditLog
		if err := auditRows.Scan(&log.ID, &log.ReportID, &log.Action, &log.UserID,
			&log.UserName, &log.Details, &log.Timestamp); err != nil {
			return err
		}
		if rep, ok := byID[log.ReportID]; ok {
			rep.AuditLogs = append(rep.AuditLogs, log)
		}
	}
	if err := auditRows.Err(); err != nil {
		return err
	}

	photoQuery := `SELECT id, report_id, category, COALESCE(subtype, ''), photo_data, COALESCE(description, ''), created_at
	               FROM vehicle_photos WHERE report_id = ANY($1) ORDER BY created_at ASC`
	photoRows, err := r.db.QueryContext(ctx, photoQuery, ids)
	if err != nil {
		return err
	}
	defer photoRows.Close()
	for photoRows.Next() {
		var p entity.VehiclePhoto
		if err := photoRows.Scan(&p.ID, &p.ReportID, &p.Category, &p.Subtype,
			&p.PhotoData, &p.Description, &p.CreatedAt); err != nil {
			return err
		}
		if rep, ok := byID[p.ReportID]; ok {
			rep.Photos = append(rep.Photos, p)
		}
	}
	return photoRows.Err()
}

func (r *reportRepo) loadUsers(ctx context.Context, ids []string) (map[string]entity.User, error) {
	users := make(map[string]entity.User)
	if len(ids) == 0 {
		return users, nil
	}

	query := `SELECT id, username, email, name, department, badge, role, is_active, must_change_password,
	          last_login, created_at, updated_at FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u entity.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Department, &u.Badge,
			&u.Role, &u.IsActive, &u.MustChangePassword, &lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLogin = &t
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

func (r *reportRepo) CountByStatus(ctx context.Context, filter repository.ReportFilter) (map[entity.ReportStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM reports`
	var args []interface{}
	if filter.AssignedTo != "" {
		query += ` WHERE assigned_to = $1`
		args = append(args, filter.AssignedTo)
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[entity.ReportStatus]int)
	for rows.Next() {
		var status entity.ReportStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

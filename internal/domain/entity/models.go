package entity

import (
	"time"
)

// Tipos ENUM para garantir a segurança de tipagem
type AppRole string
type ReportStatus string
type Priority string
type Department string
type AuditAction string

const (
	RoleAgent   AppRole = "AGENT"
	RoleOfficer AppRole = "OFFICER"
)

const (
	StatusPending    ReportStatus = "PENDING"
	StatusReceived   ReportStatus = "RECEIVED"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusCompleted  ReportStatus = "COMPLETED"
	StatusCancelled  ReportStatus = "CANCELLED"
)

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

const (
	DeptTraffic        Department = "TRAFFIC"
	DeptCriminal       Department = "CRIMINAL"
	DeptAdministrative Department = "ADMINISTRATIVE"
)

const (
	ActionCreated   AuditAction = "CREATED"
	ActionAssigned  AuditAction = "ASSIGNED"
	ActionUpdated   AuditAction = "UPDATED"
	ActionCancelled AuditAction = "CANCELLED"
)

// IsTerminal indica se o status não admite mais nenhuma transição
func (s ReportStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReceived, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

func (d Department) Valid() bool {
	return d == DeptTraffic || d == DeptCriminal || d == DeptAdministrative
}

// User define o usuário do sistema (Agente ou Policial)
type User struct {
	ID                 string     `json:"id" db:"id"`
	Username           string     `json:"username" db:"username"`
	Email              string     `json:"email" db:"email"`
	Name               string     `json:"name" db:"name"`
	Department         Department `json:"department" db:"department"`
	Badge              string     `json:"badge" db:"badge"`
	Role               AppRole    `json:"role" db:"role"`
	PasswordHash       string     `json:"-" db:"password_hash"` // O hash nunca sai em JSON
	IsActive           bool       `json:"is_active" db:"is_active"`
	MustChangePassword bool       `json:"must_change_password" db:"must_change_password"`
	LastLogin          *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// Actor é a identidade autenticada que executa uma operação.
// Sempre passada explicitamente ao motor de ciclo de vida, nunca
// lida de estado ambiente da requisição.
type Actor struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       AppRole    `json:"role"`
	Department Department `json:"department"`
	Badge      string     `json:"badge"`
}

func (u *User) Actor() Actor {
	return Actor{
		ID:         u.ID,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
		Badge:      u.Badge,
	}
}

// Location é o local do exame pericial
type Location struct {
	Address string   `json:"address,omitempty" db:"location_address"`
	City    string   `json:"city,omitempty" db:"location_city"`
	State   string   `json:"state,omitempty" db:"location_state"`
	Lat     *float64 `json:"lat,omitempty" db:"location_lat"`
	Lng     *float64 `json:"lng,omitempty" db:"location_lng"`
	H3Cell  string   `json:"h3_cell,omitempty" db:"location_h3_cell"`
}

// VehicleData agrupa a identificação do veículo examinado
type VehicleData struct {
	Plate              string `json:"plate,omitempty" db:"vehicle_plate"`
	Chassi             string `json:"chassi,omitempty" db:"vehicle_chassi"`
	VIN                string `json:"vin,omitempty" db:"vehicle_vin"`
	Motor              string `json:"motor,omitempty" db:"vehicle_motor"`
	SerieMotor         string `json:"serie_motor,omitempty" db:"vehicle_serie_motor"`
	Brand              string `json:"brand,omitempty" db:"vehicle_brand"`
	Model              string `json:"model,omitempty" db:"vehicle_model"`
	Year               int    `json:"year,omitempty" db:"vehicle_year"`
	Category           string `json:"category,omitempty" db:"vehicle_category"`
	Color              string `json:"color,omitempty" db:"vehicle_color"`
	IsCloned           bool   `json:"is_cloned" db:"vehicle_is_cloned"`
	IsAdulterated      bool   `json:"is_adulterated" db:"vehicle_is_adulterated"`
	LicensedTo         string `json:"licensed_to,omitempty" db:"vehicle_licensed_to"`
	TechnicalCondition string `json:"technical_condition,omitempty" db:"vehicle_technical_condition"`
}

// TechnicalInfo são os achados técnicos preenchidos pelo policial
type TechnicalInfo struct {
	GlassInfo             string `json:"glass_info,omitempty" db:"glass_info"`
	PlateInfo             string `json:"plate_info,omitempty" db:"plate_info"`
	MotorInfo             string `json:"motor_info,omitempty" db:"motor_info"`
	CentralEletronicaInfo string `json:"central_eletronica_info,omitempty" db:"central_eletronica_info"`
	SeriesAuxiliares      string `json:"series_auxiliares,omitempty" db:"series_auxiliares"`
}

// Analysis é o bloco conclusivo do laudo
type Analysis struct {
	IsConclusive  *bool  `json:"is_conclusive,omitempty" db:"analysis_is_conclusive"`
	Conclusion    string `json:"conclusion,omitempty" db:"analysis_conclusion"`
	Justification string `json:"justification,omitempty" db:"analysis_justification"`
	Observations  string `json:"observations,omitempty" db:"analysis_observations"`
}

// Requisition são os metadados da requisição preenchidos pelo agente
type Requisition struct {
	Oficio                 string     `json:"oficio,omitempty" db:"oficio"`
	OrgaoRequisitante      string     `json:"orgao_requisitante,omitempty" db:"orgao_requisitante"`
	AutoridadeRequisitante string     `json:"autoridade_requisitante,omitempty" db:"autoridade_requisitante"`
	GuiaOficio             string     `json:"guia_oficio,omitempty" db:"guia_oficio"`
	DataGuiaOficio         *time.Time `json:"data_guia_oficio,omitempty" db:"data_guia_oficio"`
	OcorrenciaPolicial     string     `json:"ocorrencia_policial,omitempty" db:"ocorrencia_policial"`
	ObjetivoPericia        string     `json:"objetivo_pericia,omitempty" db:"objetivo_pericia"`
	Preambulo              string     `json:"preambulo,omitempty" db:"preambulo"`
	Historico              string     `json:"historico,omitempty" db:"historico"`
	PlacaPortada           string     `json:"placa_portada,omitempty" db:"placa_portada"`
	EspecieTipo            string     `json:"especie_tipo,omitempty" db:"especie_tipo"`
	Vidro                  string     `json:"vidro,omitempty" db:"vidro"`
	OutrasNumeracoes       string     `json:"outras_numeracoes,omitempty" db:"outras_numeracoes"`
}

// Report é o laudo pericial, entidade central do sistema
type Report struct {
	ID         string       `json:"id" db:"id"`
	Number     string       `json:"number" db:"number"`
	Status     ReportStatus `json:"status" db:"status"`
	Priority   Priority     `json:"priority" db:"priority"`
	CreatedBy  string       `json:"created_by" db:"created_by"`
	AssignedTo *string      `json:"assigned_to,omitempty" db:"assigned_to"`
	AssignedAt *time.Time   `json:"assigned_at,omitempty" db:"assigned_at"`
	Deadline   *time.Time   `json:"deadline,omitempty" db:"deadline"`

	Requisition Requisition   `json:"requisition"`
	Location    Location      `json:"location"`
	Vehicle     VehicleData   `json:"vehicle"`
	Info        TechnicalInfo `json:"info"`
	Analysis    Analysis      `json:"analysis"`

	ExpertSignature string `json:"expert_signature,omitempty" db:"expert_signature"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Relações populadas via join
	Creator   *User          `json:"creator,omitempty" db:"-"`
	Assignee  *User          `json:"assignee,omitempty" db:"-"`
	AuditLogs []AuditLog     `json:"audit_logs,omitempty" db:"-"`
	Photos    []VehiclePhoto `json:"photos,omitempty" db:"-"`
}

// IsAssignedTo indica se o laudo está atribuído ao usuário informado
func (r *Report) IsAssignedTo(userID string) bool {
	return r.AssignedTo != nil && *r.AssignedTo == userID
}

// AuditLog é uma entrada imutável do histórico de um laudo
type AuditLog struct {
	ID        string      `json:"id" db:"id"`
	ReportID  string      `json:"report_id" db:"report_id"`
	Action    AuditAction `json:"action" db:"action"`
	UserID    string      `json:"user_id" db:"user_id"`
	UserName  string      `json:"user_name" db:"user_name"`
	Details   string      `json:"details,omitempty" db:"details"`
	Timestamp time.Time   `json:"timestamp" db:"timestamp"`
}

// VehiclePhoto é uma foto anexada ao laudo.
// O conjunto inteiro é substituído a cada atualização de conteúdo.
type VehiclePhoto struct {
	ID          string    `json:"id" db:"id"`
	ReportID    string    `json:"report_id" db:"report_id"`
	Category    string    `json:"category" db:"category"`
	Subtype     string    `json:"subtype,omitempty" db:"subtype"`
	PhotoData   string    `json:"photo_data" db:"photo_data"` // Base64
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReportEvent é a mensagem publicada na fila a cada mutação de laudo
type ReportEvent struct {
	ReportID   string       `json:"report_id"`
	Number     string       `json:"number"`
	Action     AuditAction  `json:"action"`
	Status     ReportStatus `json:"status"`
	AssignedTo string       `json:"assigned_to,omitempty"`
	ActorID    string       `json:"actor_id"`
	ActorName  string       `json:"actor_name"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// DashboardStats agrega contagens de laudos por status
type DashboardStats struct {
	TotalReports      int `json:"total_reports"`
	PendingReports    int `json:"pending_reports"`
	ReceivedReports   int `json:"received_reports"`
	InProgressReports int `json:"in_progress_reports"`
	CompletedReports  int `json:"completed_reports"`
	CancelledReports  int `json:"cancelled_reports"`
}

func (User) TableName() string {
	return "users"
}

func (Report) TableName() string {
	return "reports"
}

func (AuditLog) TableName() string {
	return "report_audit_logs"
}

func (VehiclePhoto) TableName() string {
	return "vehicle_photos"
}

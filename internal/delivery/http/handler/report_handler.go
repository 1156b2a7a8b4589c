package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/middleware"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
	"github.com/Beatriz-ux/laudos-dpt/pkg/rest/response"
)

type ReportHandler struct {
	reportService  service.ReportService
	storageService service.StorageService
}

func NewReportHandler(rs service.ReportService, ss service.StorageService) *ReportHandler {
	return &ReportHandler{
		reportService:  rs,
		storageService: ss,
	}
}

// DTO de abertura de laudo. Os grupos aninhados reaproveitam as
// entidades, que já carregam as tags JSON do contrato da API.
type CreateReportRequest struct {
	Priority    entity.Priority    `json:"priority" binding:"required"`
	Deadline    *time.Time         `json:"deadline"`
	AssignedTo  string             `json:"assigned_to"`
	Requisition entity.Requisition `json:"requisition" binding:"required"`
	Location    entity.Location    `json:"location"`
	Vehicle     entity.VehicleData `json:"vehicle" binding:"required"`
}

func (h *ReportHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	input := service.CreateReportInput{
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		AssignedTo:  req.AssignedTo,
		Requisition: req.Requisition,
		Location:    req.Location,
		Vehicle:     req.Vehicle,
	}

	report, err := h.reportService.Create(c.Request.Context(), input, actor)
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.Created(c, report)
}

func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	reports, err := h.reportService.List(c.Request.Context(), actor, c.Query("officer_id"))
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, reports)
}

func (h *ReportHandler) GetDetails(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, report)
}

type AssignReportRequest struct {
	OfficerID string `json:"officer_id" binding:"required"`
}

func (h *ReportHandler) Assign(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	var req AssignReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reportService.Assign(c.Request.Context(), c.Param("id"), req.OfficerID, actor); err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, gin.H{"id": c.Param("id"), "status": entity.StatusReceived})
}

type CancelReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *ReportHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	var req CancelReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reportService.Cancel(c.Request.Context(), c.Param("id"), req.Reason, actor); err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, gin.H{"id": c.Param("id"), "status": entity.StatusCancelled})
}

type UpdateStatusRequest struct {
	Status  entity.ReportStatus `json:"status" binding:"required"`
	Details string              `json:"details"`
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reportService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Details, actor); err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, gin.H{"id": c.Param("id"), "status": req.Status})
}

// DTOs de atualização parcial de conteúdo. Ponteiro nil preserva o
// valor atual; o bloco photos, quando presente, substitui o conjunto.

type LocationPatchRequest struct {
	Address *string  `json:"address"`
	City    *string  `json:"city"`
	State   *string  `json:"state"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type VehiclePatchRequest struct {
	Plate              *string `json:"plate"`
	Chassi             *string `json:"chassi"`
	VIN                *string `json:"vin"`
	Motor              *string `json:"motor"`
	SerieMotor         *string `json:"serie_motor"`
	Brand              *string `json:"brand"`
	Model              *string `json:"model"`
	Year               *int    `json:"year"`
	Category           *string `json:"category"`
	Color              *string `json:"color"`
	IsCloned           *bool   `json:"is_cloned"`
	IsAdulterated      *bool   `json:"is_adulterated"`
	LicensedTo         *string `json:"licensed_to"`
	TechnicalCondition *string `json:"technical_condition"`
}

type TechnicalInfoPatchRequest struct {
	GlassInfo             *string `json:"glass_info"`
	PlateInfo             *string `json:"plate_info"`
	MotorInfo             *string `json:"motor_info"`
	CentralEletronicaInfo *string `json:"central_eletronica_info"`
	SeriesAuxiliares      *string `json:"series_auxiliares"`
}

type AnalysisPatchRequest struct {
	IsConclusive  *bool   `json:"is_conclusive"`
	Conclusion    *string `json:"conclusion"`
	Justification *string `json:"justification"`
	Observations  *string `json:"observations"`
}

type PhotoRequest struct {
	Category    string `json:"category" binding:"required"`
	Subtype     string `json:"subtype"`
	PhotoData   string `json:"photo_data" binding:"required"`
	Description string `json:"description"`
}

type UpdateContentRequest struct {
	Priority  *entity.Priority           `json:"priority"`
	Deadline  *time.Time                 `json:"deadline"`
	Location  *LocationPatchRequest      `json:"location"`
	Vehicle   *VehiclePatchRequest       `json:"vehicle"`
	Info      *TechnicalInfoPatchRequest `json:"info"`
	Analysis  *AnalysisPatchRequest      `json:"analysis"`
	Signature *string                    `json:"expert_signature"`
	Photos    *[]PhotoRequest            `json:"photos"`
}

func (h *ReportHandler) UpdateContent(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	patch := service.ContentPatch{
		Priority:  req.Priority,
		Deadline:  req.Deadline,
		Signature: req.Signature,
	}
	if req.Location != nil {
		patch.Location = &service.LocationPatch{
			Address: req.Location.Address,
			City:    req.Location.City,
			State:   req.Location.State,
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
		}
	}
	if req.Vehicle != nil {
		patch.Vehicle = &service.VehiclePatch{
			Plate:              req.Vehicle.Plate,
			Chassi:             req.Vehicle.Chassi,
			VIN:                req.Vehicle.VIN,
			Motor:              req.Vehicle.Motor,
			SerieMotor:         req.Vehicle.SerieMotor,
			Brand:              req.Vehicle.Brand,
			Model:              req.Vehicle.Model,
			Year:               req.Vehicle.Year,
			Category:           req.Vehicle.Category,
			Color:              req.Vehicle.Color,
			IsCloned:           req.Vehicle.IsCloned,
			IsAdulterated:      req.Vehicle.IsAdulterated,
			LicensedTo:         req.Vehicle.LicensedTo,
			TechnicalCondition: req.Vehicle.TechnicalCondition,
		}
	}
	if req.Info != nil {
		patch.Info = &service.TechnicalInfoPatch{
			GlassInfo:             req.Info.GlassInfo,
			PlateInfo:             req.Info.PlateInfo,
			MotorInfo:             req.Info.MotorInfo,
			CentralEletronicaInfo: req.Info.CentralEletronicaInfo,
			SeriesAuxiliares:      req.Info.SeriesAuxiliares,
		}
	}
	if req.Analysis != nil {
		patch.Analysis = &service.AnalysisPatch{
			IsConclusive:  req.Analysis.IsConclusive,
			Conclusion:    req.Analysis.Conclusion,
			Justification: req.Analysis.Justification,
			Observations:  req.Analysis.Observations,
		}
	}
	if req.Photos != nil {
		photos := make([]service.PhotoInput, 0, len(*req.Photos))
		for _, p := range *req.Photos {
			photos = append(photos, service.PhotoInput{
				Category:    p.Category,
				Subtype:     p.Subtype,
				PhotoData:   p.PhotoData,
				Description: p.Description,
			})
		}
		patch.Photos = &photos
	}

	if err := h.reportService.UpdateContent(c.Request.Context(), c.Param("id"), patch, actor); err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, gin.H{"id": c.Param("id")})
}

func (h *ReportHandler) GetUploadURL(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	reportID := c.Param("id")

	// Mesma regra de visibilidade da leitura: sem acesso ao laudo,
	// nada de URL de upload para ele
	if _, err := h.reportService.GetByID(c.Request.Context(), reportID, actor); err != nil {
		response.ResolveError(c, err)
		return
	}

	slot, err := h.storageService.GetPhotoUploadURL(c.Request.Context(), reportID, c.Query("file_name"))
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, slot)
}

package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/ledger-api/internal/application/dto"
	"github.com/invorya/ledger-api/internal/application/reconcile"
	"github.com/invorya/ledger-api/internal/domain"
)

// SyncHandler expone el motor de sync-validation: el GET es la revalidación
// sin efectos ("Revalidar"); el POST ejecuta una remediación confirmada.
type SyncHandler struct {
	validator   *reconcile.SyncValidationUseCase
	remediation *reconcile.RemediationUseCase
}

// NewSyncHandler construye el handler.
func NewSyncHandler(validator *reconcile.SyncValidationUseCase, remediation *reconcile.RemediationUseCase) *SyncHandler {
	return &SyncHandler{validator: validator, remediation: remediation}
}

// Validate godoc
// @Summary      Validar consistencia catálogo ↔ ledger
// @Description  Reporte de deriva: huérfanos (error), stock sin historial y
//
//	roturas de continuidad (warnings). Solo lectura, sin efectos.
//
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncValidationResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/sync-validation [get]
func (h *SyncHandler) Validate(c *fiber.Ctx) error {
	report, err := h.validator.Validate(c.Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(toValidationDTO(report))
}

// Remediate godoc
// @Summary      Remediar inventario huérfano
// @Description  Ejecuta exactamente una acción sobre el conjunto de huérfanos:
//
//	migrate (aditiva, recrea entradas de catálogo) o clean
//	(IRREVERSIBLE: borra los asientos huérfanos). clean exige
//	confirm="IRREVERSIBLE" y rol admin. Siempre revalida al final.
//
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RemediationRequest  true  "action: migrate | clean"
// @Success      200   {object}  dto.RemediationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/sync-validation [post]
func (h *SyncHandler) Remediate(c *fiber.Ctx) error {
	var in dto.RemediationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// La acción destructiva exige la confirmación literal antes de tocar nada.
	if in.Action == reconcile.ActionClean && !strings.Contains(in.Confirm, "IRREVERSIBLE") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "CONFIRM_REQUIRED",
			Message: "clean borra movimientos sin vuelta atrás; envía confirm=\"IRREVERSIBLE\" para continuar",
		})
	}

	result, err := h.remediation.Execute(c.Context(), in.Action, GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return storeError(c, err)
	}

	out := dto.RemediationResponse{
		Success:    result.Success,
		Action:     result.Action,
		Message:    result.Message,
		Outcomes:   make([]dto.RemediationOutcomeDTO, 0, len(result.Outcomes)),
		Validation: toValidationDTO(result.Validation),
	}
	for _, o := range result.Outcomes {
		row := dto.RemediationOutcomeDTO{ProductID: o.ProductID, OK: o.OK, Detail: o.Detail}
		if o.Err != nil {
			row.Error = o.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, row)
	}
	if !result.Success {
		out.Error = "remediación incompleta; revisar outcomes por producto"
	}
	return c.JSON(out)
}

func toValidationDTO(r *reconcile.ValidationReport) dto.SyncValidationResponse {
	return dto.SyncValidationResponse{
		IsValid:           r.IsValid,
		Errors:            r.Errors,
		Warnings:          r.Warnings,
		OrphanedInventory: r.OrphanedInventory,
		MissingInventory:  r.MissingInventory,
	}
}

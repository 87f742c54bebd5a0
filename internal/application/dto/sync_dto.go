package dto

// SyncValidationResponse reporte de deriva catálogo↔ledger.
// Diagnóstico puntual: se calcula fresco en cada invocación y no se persiste.
type SyncValidationResponse struct {
	IsValid           bool     `json:"isValid"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	OrphanedInventory []string `json:"orphanedInventory"`
	MissingInventory  []string `json:"missingInventory"`
}

// RemediationRequest body para POST /api/inventory/sync-validation.
// Confirm debe repetir la palabra de la acción; para clean el handler exige
// además el literal "IRREVERSIBLE" porque borra asientos sin vuelta atrás.
type RemediationRequest struct {
	Action  string `json:"action"` // migrate | clean
	Confirm string `json:"confirm,omitempty"`
}

// RemediationOutcomeDTO resultado por producto de una remediación.
type RemediationOutcomeDTO struct {
	ProductID string `json:"product_id"`
	OK        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"` // ej. "3 movimientos eliminados"
	Error     string `json:"error,omitempty"`
}

// RemediationResponse respuesta de POST /api/inventory/sync-validation.
// Success exige que los ids objetivo ya no aparezcan como huérfanos en la
// revalidación, no solo que las escrituras no fallaran.
type RemediationResponse struct {
	Success    bool                    `json:"success"`
	Action     string                  `json:"action"`
	Message    string                  `json:"message"`
	Outcomes   []RemediationOutcomeDTO `json:"outcomes"`
	Validation SyncValidationResponse  `json:"validation"`
	Error      string                  `json:"error,omitempty"`
}

package transport

// AdvanceCommissionRequest moves a commission along its settlement path.
type AdvanceCommissionRequest struct {
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks" validate:"max=2000"`
}

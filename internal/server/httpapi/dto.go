package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/server/models"
	"github.com/dmitrijs2005/wastehub/internal/server/services"
)

// Money and weights travel as JSON numbers; decimal keeps them exact on
// the way in and they are rendered with two places on the way out.

type submitDepositRequest struct {
	UserID      string          `json:"userId"`
	HubID       string          `json:"hubId"`
	WasteType   string          `json:"wasteType"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	PhotoURL    string          `json:"photoUrl"`
}

type verifyRequest struct {
	AdminID           string           `json:"adminId"`
	CreditsToAllocate *decimal.Decimal `json:"creditsToAllocate"`
}

type rejectRequest struct {
	AdminID string `json:"adminId"`
	Reason  string `json:"reason"`
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type updateUserRequest struct {
	AdminID       string           `json:"adminId"`
	Name          *string          `json:"name"`
	Email         *string          `json:"email"`
	Role          *string          `json:"role"`
	CreditBalance *decimal.Decimal `json:"creditBalance"`
	CashBalance   *decimal.Decimal `json:"cashBalance"`
}

type reconcileRequest struct {
	AdminID string `json:"adminId"`
}

type verificationDTO struct {
	VerifiedBy       string    `json:"verifiedBy"`
	VerifiedAt       time.Time `json:"verifiedAt"`
	CreditsAllocated float64   `json:"creditsAllocated"`
}

type rejectionDTO struct {
	RejectedBy string    `json:"rejectedBy"`
	RejectedAt time.Time `json:"rejectedAt"`
	Reason     string    `json:"reason"`
}

type depositDTO struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	HubID            string           `json:"hubId"`
	WasteType        string           `json:"wasteType"`
	Amount           float64          `json:"amount"`
	Description      string           `json:"description,omitempty"`
	PhotoURL         string           `json:"photoUrl,omitempty"`
	Status           string           `json:"status"`
	EstimatedCredits float64          `json:"estimatedCredits"`
	Verification     *verificationDTO `json:"verification,omitempty"`
	Rejection        *rejectionDTO    `json:"rejection,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	UserName         string           `json:"userName,omitempty"`
	UserEmail        string           `json:"userEmail,omitempty"`
	HubName          string           `json:"hubName,omitempty"`
}

type paginationDTO struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type depositListDTO struct {
	Deposits   []depositDTO  `json:"deposits"`
	Pagination paginationDTO `json:"pagination"`
}

type summaryDTO struct {
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

type verifyResponse struct {
	Deposit      depositDTO     `json:"deposit"`
	LedgerEntry  ledgerEntryDTO `json:"ledgerEntry"`
	BalanceAfter float64        `json:"balanceAfter"`
}

type userDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	CreditBalance float64   `json:"creditBalance"`
	CashBalance   float64   `json:"cashBalance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ledgerEntryDTO struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
	ReferenceID   string    `json:"referenceId"`
	ReferenceType string    `json:"referenceType"`
	BalanceAfter  float64   `json:"balanceAfter"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ledgerPageDTO struct {
	Entries    []ledgerEntryDTO `json:"entries"`
	Pagination paginationDTO    `json:"pagination"`
}

type auditDTO struct {
	UserID        string  `json:"userId"`
	CreditBalance float64 `json:"creditBalance"`
	LedgerTotal   float64 `json:"ledgerTotal"`
	Drift         float64 `json:"drift"`
	Consistent    bool    `json:"consistent"`
}

type locationDTO struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type hubDTO struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Location           locationDTO        `json:"location"`
	AcceptedWasteTypes []string           `json:"acceptedWasteTypes"`
	Rates              map[string]float64 `json:"rates"`
}

type errorBody struct {
	Error errorDTO `json:"error"`
}

type errorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toDepositDTO(d *models.Deposit) depositDTO {
	out := depositDTO{
		ID:               d.ID,
		UserID:           d.UserID,
		HubID:            d.HubID,
		WasteType:        string(d.WasteType),
		Amount:           d.Amount.InexactFloat64(),
		Description:      d.Description,
		PhotoURL:         d.PhotoURL,
		Status:           string(d.Status),
		EstimatedCredits: money(d.EstimatedCredits),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if v := d.Verification; v != nil {
		out.Verification = &verificationDTO{
			VerifiedBy:       v.VerifiedBy,
			VerifiedAt:       v.VerifiedAt,
			CreditsAllocated: money(v.CreditsAllocated),
		}
	}
	if rj := d.Rejection; rj != nil {
		out.Rejection = &rejectionDTO{RejectedBy: rj.RejectedBy, RejectedAt: rj.RejectedAt, Reason: rj.Reason}
	}
	return out
}

func toDepositViewDTO(v *models.DepositView) depositDTO {
	out := toDepositDTO(&v.Deposit)
	out.UserName = v.UserName
	out.UserEmail = v.UserEmail
	out.HubName = v.HubName
	return out
}

func toPaginationDTO(p services.PageInfo) paginationDTO {
	return paginationDTO{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          string(u.Role),
		CreditBalance: money(u.CreditBalance),
		CashBalance:   money(u.CashBalance),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toLedgerEntryDTO(e *models.LedgerEntry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:            e.ID,
		UserID:        e.UserID,
		Type:          string(e.Type),
		Amount:        money(e.Amount),
		Description:   e.Description,
		ReferenceID:   e.ReferenceID,
		ReferenceType: string(e.ReferenceType),
		BalanceAfter:  money(e.BalanceAfter),
		CreatedAt:     e.CreatedAt,
	}
}

func toAuditDTO(a *services.BalanceAudit) auditDTO {
	return auditDTO{
		UserID:        a.UserID,
		CreditBalance: money(a.CreditBalance),
		LedgerTotal:   money(a.LedgerTotal),
		Drift:         money(a.Drift),
		Consistent:    a.Consistent(),
	}
}

// toHubDTO lists the effective rate for every accepted material.
func toHubDTO(h *models.Hub, dir HubDirectory) hubDTO {
	out := hubDTO{
		ID:   h.ID,
		Name: h.Name,
		Location: locationDTO{
			Address:   h.Location.Address,
			City:      h.Location.City,
			Latitude:  h.Location.Latitude,
			Longitude: h.Location.Longitude,
		},
		AcceptedWasteTypes: make([]string, 0, len(h.Accepted)),
		Rates:              make(map[string]float64, len(h.Accepted)),
	}
	for _, w := range h.Accepted {
		out.AcceptedWasteTypes = append(out.AcceptedWasteTypes, string(w))
		out.Rates[string(w)] = dir.Rate(h.ID, w).InexactFloat64()
	}
	return out
}

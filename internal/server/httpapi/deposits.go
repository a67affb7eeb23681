package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/wastehub/internal/server/services"
)

func (a *api) submitDeposit(w http.ResponseWriter, r *http.Request) {
	var req submitDepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	d, err := a.deposits.Submit(r.Context(), services.SubmitDeposit{
		UserID:      req.UserID,
		HubID:       req.HubID,
		WasteType:   req.WasteType,
		Amount:      req.Amount,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDepositViewDTO(d))
}

func (a *api) getDeposit(w http.ResponseWriter, r *http.Request) {
	d, err := a.deposits.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepositViewDTO(d))
}

// listDeposits serves the review queue. ?status=all widens it to every status.
func (a *api) listDeposits(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.deposits.List(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := depositListDTO{
		Deposits:   make([]depositDTO, 0, len(res.Deposits)),
		Pagination: toPaginationDTO(res.PageInfo),
	}
	for _, d := range res.Deposits {
		out.Deposits = append(out.Deposits, toDepositViewDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) summary(w http.ResponseWriter, r *http.Request) {
	s, err := a.deposits.Summary(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO{Pending: s.Pending, Verified: s.Verified, Rejected: s.Rejected, Total: s.Total})
}

func (a *api) verifyDeposit(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.verification.Verify(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.CreditsToAllocate)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Deposit:      toDepositDTO(res.Deposit),
		LedgerEntry:  toLedgerEntryDTO(res.Entry),
		BalanceAfter: money(res.BalanceAfter),
	})
}

func (a *api) rejectDeposit(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	d, err := a.verification.Reject(r.Context(), chi.URLParam(r, "id"), req.AdminID, req.Reason)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepositDTO(d))
}

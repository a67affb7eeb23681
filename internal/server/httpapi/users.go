package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/wastehub/internal/server/services"
)

func (a *api) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.users.Create(r.Context(), services.CreateUser{Name: req.Name, Email: req.Email, Role: req.Role})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (a *api) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (a *api) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.users.AdminUpdate(r.Context(), chi.URLParam(r, "id"), services.UpdateUser{
		AdminID:       req.AdminID,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		CreditBalance: req.CreditBalance,
		CashBalance:   req.CashBalance,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (a *api) userLedger(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.users.Ledger(r.Context(), chi.URLParam(r, "id"), page, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := ledgerPageDTO{
		Entries:    make([]ledgerEntryDTO, 0, len(res.Entries)),
		Pagination: toPaginationDTO(res.PageInfo),
	}
	for _, e := range res.Entries {
		out.Entries = append(out.Entries, toLedgerEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) auditBalance(w http.ResponseWriter, r *http.Request) {
	res, err := a.users.AuditBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditDTO(res))
}

func (a *api) reconcileBalance(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.users.ReconcileBalance(r.Context(), chi.URLParam(r, "id"), req.AdminID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditDTO(res))
}

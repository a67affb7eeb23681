package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *api) listHubs(w http.ResponseWriter, r *http.Request) {
	list := a.hubs.List()
	out := make([]hubDTO, 0, len(list))
	for _, h := range list {
		out = append(out, toHubDTO(h, a.hubs))
	}
	writeJSON(w, http.StatusOK, map[string]any{"hubs": out})
}

func (a *api) getHub(w http.ResponseWriter, r *http.Request) {
	h, err := a.hubs.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHubDTO(h, a.hubs))
}

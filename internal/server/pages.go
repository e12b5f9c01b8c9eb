package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"logodepot/internal/config"
	"logodepot/internal/ui"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logos := make([]ui.Logo, 0, len(records))
	for _, rec := range records {
		logos = append(logos, ui.Logo{
			ID:           rec.ID,
			OriginalName: rec.OriginalName,
			URL:          publicURL(rec.ID, rec.URL),
		})
	}

	if err := ui.IndexPage(s.version, logos).Render(r.Context(), w); err != nil {
		slog.Error("Unable to render index page", "err", err)
	}
}

func (s *Server) handleSetupForm(w http.ResponseWriter, r *http.Request) {
	if err := ui.SetupPage().Render(r.Context(), w); err != nil {
		slog.Error("Unable to render setup page", "err", err)
	}
}

func (s *Server) handleSetupSave(w http.ResponseWriter, r *http.Request) {
	if s.creds == nil {
		http.Error(w, "this deployment does not use provider credentials", http.StatusNotFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("parsing form: %v", err), http.StatusBadRequest)
		return
	}

	creds := config.Credentials{
		CloudName: r.FormValue("cloud_name"),
		APIKey:    r.FormValue("api_key"),
		APISecret: r.FormValue("api_secret"),
	}
	if creds.CloudName == "" || creds.APIKey == "" || creds.APISecret == "" {
		http.Error(w, "all credential fields are required", http.StatusBadRequest)
		return
	}

	if err := s.creds.Save(creds); err != nil {
		slog.Error("Unable to save credentials", "err", err)
		http.Error(w, "unable to save configuration", http.StatusInternalServerError)
		return
	}

	slog.Info("Provider credentials saved")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

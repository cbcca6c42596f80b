package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	dashgrid "github.com/tradevue/go-dashgrid/components/dashgrid"
	"github.com/tradevue/go-dashgrid/components/dashgrid/commands"
)

// SnapshotSource provides the current dashboard snapshot for reads.
type SnapshotSource interface {
	Snapshot() dashgrid.Snapshot
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Snapshots SnapshotSource
	Add       gocommand.Commander[dashgrid.AddWidgetRequest]
	Remove    gocommand.Commander[commands.RemoveWidgetInput]
	Update    gocommand.Commander[commands.UpdateWidgetInput]
	Reorder   gocommand.Commander[commands.ReorderWidgetsInput]
	Mode      gocommand.Commander[commands.SetModeInput]
	Refresh   gocommand.Commander[commands.RefreshInput]
}

func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.Snapshots.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashgrid.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Add.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	input := commands.RemoveWidgetInput{WidgetID: widgetID}
	if err := h.Remove.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleUpdateWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var patch dashgrid.WidgetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.UpdateWidgetInput{WidgetID: widgetID, Patch: patch}
	if err := h.Update.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Reorder.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetModeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Mode.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh.Execute(r.Context(), commands.RefreshInput{}); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// statusForError maps the engine error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var validation *dashgrid.ValidationError
	var quota *dashgrid.QuotaExceededError
	var persistence *dashgrid.PersistenceError
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &quota):
		return http.StatusForbidden
	case errors.As(err, &persistence):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package dashgrid

import (
	"sort"
	"sync"
)

// DataStore keeps the last payload per widget, fed by the initial batch fetch
// and the live stream. It is ephemeral: rendering reads it, placement never
// does, and it is cleared when the dashboard is closed.
type DataStore struct {
	mu   sync.RWMutex
	data map[string]WidgetPayload
}

// NewDataStore creates an empty widget data store.
func NewDataStore() *DataStore {
	return &DataStore{data: make(map[string]WidgetPayload)}
}

// Replace swaps in a full batch, dropping payloads for widgets absent from it.
func (s *DataStore) Replace(batch map[string]WidgetPayload) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]WidgetPayload, len(batch))
	ids := make([]string, 0, len(batch))
	for id, payload := range batch {
		s.data[id] = clonePayload(payload)
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge shallow-overwrites the given payloads field by field, leaving widgets
// absent from the frame untouched. Returns the ids that changed.
func (s *DataStore) Merge(frame map[string]WidgetPayload) []string {
	if len(frame) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(frame))
	for id, payload := range frame {
		existing, ok := s.data[id]
		if !ok {
			s.data[id] = clonePayload(payload)
		} else {
			for k, v := range payload {
				existing[k] = v
			}
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Payload returns the last payload for a widget.
func (s *DataStore) Payload(widgetID string) (WidgetPayload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[widgetID]
	if !ok {
		return nil, false
	}
	return clonePayload(payload), true
}

// All returns a copy of every stored payload.
func (s *DataStore) All() map[string]WidgetPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]WidgetPayload, len(s.data))
	for id, payload := range s.data {
		out[id] = clonePayload(payload)
	}
	return out
}

// Remove drops the payload for a widget, typically after widget removal.
func (s *DataStore) Remove(widgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, widgetID)
}

// Clear drops every payload. Called when the dashboard view closes.
func (s *DataStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]WidgetPayload)
}

func clonePayload(p WidgetPayload) WidgetPayload {
	out := make(WidgetPayload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

package dashgrid

import (
	"reflect"
	"testing"
)

func TestDataStoreReplaceDropsAbsentWidgets(t *testing.T) {
	s := NewDataStore()
	s.Replace(map[string]WidgetPayload{
		"w1": {"value": 1.0},
		"w2": {"value": 2.0},
	})

	ids := s.Replace(map[string]WidgetPayload{"w2": {"value": 3.0}})
	if !reflect.DeepEqual(ids, []string{"w2"}) {
		t.Fatalf("changed ids = %v", ids)
	}
	if _, ok := s.Payload("w1"); ok {
		t.Fatalf("replace kept a widget absent from the batch")
	}
	if payload, _ := s.Payload("w2"); payload["value"] != 3.0 {
		t.Fatalf("payload = %v", payload)
	}
}

func TestDataStoreMergeIsShallowPerField(t *testing.T) {
	s := NewDataStore()
	s.Replace(map[string]WidgetPayload{
		"w1": {"value": 1.0, "label": "PnL"},
		"w2": {"value": 2.0},
	})

	ids := s.Merge(map[string]WidgetPayload{
		"w1": {"value": 9.5},
		"w3": {"value": 7.0},
	})
	if !reflect.DeepEqual(ids, []string{"w1", "w3"}) {
		t.Fatalf("changed ids = %v", ids)
	}
	payload, _ := s.Payload("w1")
	if payload["value"] != 9.5 || payload["label"] != "PnL" {
		t.Fatalf("merge result = %v", payload)
	}
	if payload, _ := s.Payload("w2"); payload["value"] != 2.0 {
		t.Fatalf("widget absent from frame was touched: %v", payload)
	}
	if _, ok := s.Payload("w3"); !ok {
		t.Fatalf("merge should insert unseen widgets")
	}
}

func TestDataStoreMergeEmptyFrameIsNoop(t *testing.T) {
	s := NewDataStore()
	s.Replace(map[string]WidgetPayload{"w1": {"value": 1.0}})
	if ids := s.Merge(nil); ids != nil {
		t.Fatalf("empty merge reported changes: %v", ids)
	}
}

func TestDataStorePayloadsAreCopies(t *testing.T) {
	s := NewDataStore()
	s.Replace(map[string]WidgetPayload{"w1": {"value": 1.0}})

	payload, _ := s.Payload("w1")
	payload["value"] = 99.0
	if stored, _ := s.Payload("w1"); stored["value"] != 1.0 {
		t.Fatalf("caller mutation leaked into store: %v", stored)
	}

	all := s.All()
	all["w1"]["value"] = 42.0
	if stored, _ := s.Payload("w1"); stored["value"] != 1.0 {
		t.Fatalf("All leaked a live reference: %v", stored)
	}
}

func TestDataStoreRemoveAndClear(t *testing.T) {
	s := NewDataStore()
	s.Replace(map[string]WidgetPayload{
		"w1": {"value": 1.0},
		"w2": {"value": 2.0},
	})
	s.Remove("w1")
	if _, ok := s.Payload("w1"); ok {
		t.Fatalf("remove did not drop payload")
	}
	s.Clear()
	if got := len(s.All()); got != 0 {
		t.Fatalf("clear left %d payloads", got)
	}
}

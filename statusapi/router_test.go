package statusapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleStatsReturnsSnapshotAsJSON(t *testing.T) {
	r := New(func() (interface{}, error) {
		return map[string]int{"vertex_count": 42}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	r.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if body["vertex_count"] != 42 {
		t.Fatalf("vertex_count = %d, want 42", body["vertex_count"])
	}
}

func TestHandleStatsReturns500WhenStatisticsFuncFails(t *testing.T) {
	r := New(func() (interface{}, error) {
		return nil, errors.New("worker unreachable")
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	r.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"appcatalog/internal/catalog"
	"appcatalog/internal/icons"
	"appcatalog/internal/indexer"
	"appcatalog/internal/service"
	"appcatalog/internal/service/mocks"
)

func TestIconHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	mockCatalog.EXPECT().
		ResolveIcon(gomock.Any(), "org.gnome.Chess", "flatpak").
		Return(icons.Resolution{Path: "/icons/org.gnome.Chess.png", Kind: icons.KindSpecific}, nil)
	mockCatalog.EXPECT().
		ResolveIcon(gomock.Any(), "x", "snap").
		Return(icons.Resolution{}, &service.ValidationError{Field: "source_type", Message: "unknown"})

	handler := NewIconHandler(mockCatalog)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/icons?icon=org.gnome.Chess&source_type=flatpak", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["kind"] != "specific" || resp["path"] != "/icons/org.gnome.Chess.png" {
		t.Errorf("response = %v", resp)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/icons?icon=x&source_type=snap", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want 400", w.Code)
	}
}

func TestRefreshHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	mockCatalog.EXPECT().
		Refresh(gomock.Any()).
		Return(indexer.Stats{Ran: true}, nil)

	done := make(chan error, 1)
	handler := NewRefreshHandler(mockCatalog)
	handler.done = done

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %v, want 202", w.Code)
	}
	var resp RefreshResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Status != "accepted" {
		t.Errorf("response = %+v, %v", resp, err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("refresh error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run")
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %v, want 405", w.Code)
	}
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		counts     map[catalog.SourceType]int
		err        error
		wantStatus int
		wantState  string
	}{
		{
			name:       "healthy",
			counts:     map[catalog.SourceType]int{catalog.SourceLocalAppStream: 10, catalog.SourceFlatpak: 3},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "empty catalog",
			counts:     map[catalog.SourceType]int{},
			wantStatus: http.StatusOK,
			wantState:  "degraded",
		},
		{
			name:       "store unavailable",
			err:        errors.New("unable to open database file"),
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockCatalog := mocks.NewMockCatalogService(ctrl)
			mockCatalog.EXPECT().Counts(gomock.Any()).Return(tt.counts, tt.err)

			w := httptest.NewRecorder()
			NewHealthHandler(mockCatalog).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("health status = %v, want %v", resp.Status, tt.wantState)
			}
			if tt.wantState == "healthy" && resp.Counts[catalog.SourceFlatpak] != 3 {
				t.Errorf("counts = %v", resp.Counts)
			}
		})
	}
}

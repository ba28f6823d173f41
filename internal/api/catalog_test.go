package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
)

func TestFetchTemplates(t *testing.T) {
	client, _ := newTestServer(t, func(r chi.Router) {
		r.Get("/api/templates", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": "classic", "name": "Classic", "imageUrl": "/t/classic.png", "slotCount": 3},
				{"id": "duo", "name": "Duo", "imageUrl": nil, "slotCount": 2, "slotOptions": []int{2, 4}},
			})
		})
	})

	templates, err := client.FetchTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)

	assert.Equal(t, "classic", templates[0].ID)
	assert.Equal(t, 3, templates[0].SlotCount)
	assert.Equal(t, "/t/classic.png", templates[0].Image())

	assert.Equal(t, "", templates[1].Image())
	assert.Equal(t, []int{2, 4}, templates[1].SlotOptions)
	assert.True(t, templates[1].AllowsSlots(4))
	assert.False(t, templates[1].AllowsSlots(3))
}

func TestFetchBackgrounds(t *testing.T) {
	client, _ := newTestServer(t, func(r chi.Router) {
		r.Get("/api/backgrounds", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Background{{ID: "beach", Name: "Beach"}})
		})
	})

	backgrounds, err := client.FetchBackgrounds(context.Background())
	require.NoError(t, err)
	require.Len(t, backgrounds, 1)
	assert.Equal(t, "Beach", backgrounds[0].Name)
}

func TestFetchCatalog_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr string
	}{
		{"server error hides server text", http.StatusInternalServerError, map[string]string{"error": "db down"}, "Failed to fetch templates"},
		{"created is not accepted", http.StatusCreated, []any{}, "Failed to fetch templates"},
		{"wrong shape", http.StatusOK, map[string]string{"id": "x"}, "Failed to fetch templates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(r chi.Router) {
				r.Get("/api/templates", func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, tt.status, tt.body)
				})
			})

			templates, err := client.FetchTemplates(context.Background())
			require.Error(t, err)
			assert.Nil(t, templates)
			assert.Equal(t, tt.wantErr, apperrors.UserMessage(err))
		})
	}
}

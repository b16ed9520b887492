package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balneabilidade/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	lat, lng := -2.471, -44.237
	latest := domain.Sample{Date: "2025-08-18", Status: domain.StatusUnfit}
	point := domain.ProjectedStation{
		Code:        "P02",
		Beach:       "Calhau",
		Reference:   "Quiosque",
		City:        "São Luís",
		Lat:         &lat,
		Lng:         &lng,
		Latest:      &latest,
		History:     []domain.Sample{latest},
		SourceLaudo: "https://sema.example/laudo.pdf",
	}
	refreshedAt := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

	msg, err := serializeToMessage(point, refreshedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("P02"), msg.Key)

	var decoded domain.ProjectedStation
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, point, decoded)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "https://sema.example/laudo.pdf", headers["source_laudo"])
	assert.Equal(t, "2025-08-25T12:00:00Z", headers["refreshed_at"])
}

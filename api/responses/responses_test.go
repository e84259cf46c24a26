package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"order_id": "abc"})

	require.Equal(t, http.StatusCreated, w.Code)

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "abc", body.Data.(map[string]any)["order_id"])
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, http.StatusOK, "Order cancelled")

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "Order cancelled", body.Message)
	assert.Nil(t, body.Data)
}

func TestWriteErrorRendersFieldMessages(t *testing.T) {
	w := httptest.NewRecorder()
	fields := pkgerrors.Fields{}
	fields.Add("vendor_id", "is required")
	fields.Add("lines", "must contain at least one line")

	WriteError(context.Background(), logger.Nop(), w, fields.Err())

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Code)
	assert.Equal(t, []any{"lines must contain at least one line", "vendor_id is required"}, body.Error)
	assert.NotNil(t, body.Details)
}

func TestWriteErrorExposesDomainMessages(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeConflict, "order is already cancelled"))

	require.Equal(t, http.StatusConflict, w.Code)

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "order is already cancelled", body.Error)
	assert.Equal(t, string(pkgerrors.CodeConflict), body.Code)
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), logger.Nop(), w, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Code)
	assert.Equal(t, "internal server error", body.Error)
	assert.Nil(t, body.Details)
}

func TestWriteErrorWireShape(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"order not found","code":"NOT_FOUND"}`, w.Body.String())
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setJWTContext simulates an authenticated request without a real token
func setJWTContext(c *gin.Context, userID, storeID uuid.UUID) {
	c.Set("jwt_user_id", userID.String())
	c.Set("jwt_store_id", storeID.String())
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetUserID(t *testing.T) {
	t.Run("returns parsed ID", func(t *testing.T) {
		c, _ := newTestContext()
		userID := uuid.New()
		setJWTContext(c, userID, uuid.New())

		got, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("errors when unset", func(t *testing.T) {
		c, _ := newTestContext()

		_, err := getUserID(c)
		assert.Error(t, err)
	})
}

func TestGetStoreID(t *testing.T) {
	t.Run("returns parsed ID", func(t *testing.T) {
		c, _ := newTestContext()
		storeID := uuid.New()
		setJWTContext(c, uuid.New(), storeID)

		got, err := getStoreID(c)
		require.NoError(t, err)
		assert.Equal(t, storeID, got)
	})

	t.Run("errors for customer tokens", func(t *testing.T) {
		c, _ := newTestContext()
		c.Set("jwt_user_id", uuid.New().String())

		_, err := getStoreID(c)
		assert.Error(t, err)
	})
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.SuccessWithMeta(c, []string{"a", "b"}, 100, 2, 10)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Created(c, gin.H{"id": uuid.New()})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleError_DomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        shared.NewDomainError("NOT_FOUND", "Product not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "ERR_NOT_FOUND",
		},
		{
			name:       "insufficient stock",
			err:        shared.NewDomainError("INSUFFICIENT_STOCK", "Only 2 left"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "ERR_INSUFFICIENT_STOCK",
		},
		{
			name:       "validation",
			err:        shared.NewDomainError("VALIDATION", "Quantity must be positive"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ERR_VALIDATION",
		},
		{
			name:       "invalid-prefixed codes default to 400",
			err:        shared.NewDomainError("INVALID_DELIVERY_STATUS", "Unknown status"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ERR_INVALID_DELIVERY_STATUS",
		},
		{
			name:       "unmapped domain codes default to 500",
			err:        shared.NewDomainError("SOMETHING_ODD", "odd"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "ERR_SOMETHING_ODD",
		},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleError_UnknownErrorIsOpaque(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
}

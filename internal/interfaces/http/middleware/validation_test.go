package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/storelink/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationFixture struct {
	Email    string `json:"email" binding:"required,email"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

func TestSetupValidator_UsesJSONTagNames(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(validationFixture{Email: "not-an-email", Quantity: 5})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-123")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
	assert.Equal(t, "Invalid email format", resp.Error.Details[0].Message)
}

func TestFormatValidationErrors_Messages(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(validationFixture{})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "")
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 2)

	messages := map[string]string{}
	for _, detail := range resp.Error.Details {
		messages[detail.Field] = detail.Message
	}
	assert.Equal(t, "This field is required", messages["email"])
	assert.Equal(t, "This field is required", messages["quantity"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-456")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set(RequestIDKey, "req-789")

	err := binding.Validator.ValidateStruct(validationFixture{Email: "bad", Quantity: 1})
	require.Error(t, err)

	HandleValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-789", resp.Error.RequestID)
}

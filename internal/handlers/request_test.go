package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
)

func TestFlexibleIDAcceptsNumbersAndStrings(t *testing.T) {
	cases := map[string]FlexibleID{
		`7`:     7,
		`"12"`:  12,
		`" 3 "`: 3,
		`""`:    0,
		`null`:  0,
	}
	for raw, want := range cases {
		var got FlexibleID
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}

	var id FlexibleID
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &id))
}

func TestDecodeRequestTrimsBeforeValidating(t *testing.T) {
	body := `{"full_name":"  Ana  ","company":"   ","host_id":"4","purpose":" Meeting "}`
	r := httptest.NewRequest("POST", "/checkin", strings.NewReader(body))

	var req checkInRequest
	require.NoError(t, decodeRequest(httptest.NewRecorder(), r, &req))
	assert.Equal(t, "Ana", req.FullName)
	assert.Nil(t, req.Company)
	assert.Equal(t, FlexibleID(4), req.HostID)
	assert.Equal(t, "Meeting", req.Purpose)
}

func TestDecodeRequestReportsFieldNames(t *testing.T) {
	r := httptest.NewRequest("POST", "/hosts", strings.NewReader(`{"full_name":"` + strings.Repeat("x", 201) + `"}`))

	var req createHostRequest
	err := decodeRequest(httptest.NewRecorder(), r, &req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "full_name must be at most 200 characters")
	assert.Contains(t, err.Error(), "email is required")
}

func TestDecodeRequestRejectsControlCharacters(t *testing.T) {
	body := `{"full_name":"Ana\nMaria","phone":"555\u0000","host_id":1,"purpose":"Meeting\r\nX-Injected: 1"}`
	r := httptest.NewRequest("POST", "/checkin", strings.NewReader(body))

	var req checkInRequest
	err := decodeRequest(httptest.NewRecorder(), r, &req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	for _, field := range []string{"full_name", "phone", "purpose"} {
		assert.Contains(t, err.Error(), field+" must not contain control characters")
	}
}

func TestDecodeRequestAcceptsAnyNonBlankEmail(t *testing.T) {
	r := httptest.NewRequest("POST", "/hosts", strings.NewReader(`{"full_name":"Bob","email":"bob"}`))

	var req createHostRequest
	require.NoError(t, decodeRequest(httptest.NewRecorder(), r, &req))
	assert.Equal(t, "bob", req.Email)
}

package validation

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisingdash/internal/advising"
	apierrors "advisingdash/internal/errors"
)

func TestValidator_Upload(t *testing.T) {
	v := New(1024)

	tests := []struct {
		name       string
		upload     Upload
		wantStatus int
		wantField  string
	}{
		{
			name:   "csv accepted",
			upload: Upload{Kind: "advising", Filename: "appointments.csv", Size: 100},
		},
		{
			name:   "xlsx accepted case-insensitively",
			upload: Upload{Kind: "workshop", Filename: "Sign Ups.XLSX", Size: 1024},
		},
		{
			name:       "unsupported extension",
			upload:     Upload{Kind: "advising", Filename: "notes.txt", Size: 10},
			wantStatus: http.StatusUnsupportedMediaType,
			wantField:  "filename",
		},
		{
			name:       "too large",
			upload:     Upload{Kind: "advising", Filename: "a.csv", Size: 2048},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "empty file",
			upload:     Upload{Kind: "advising", Filename: "a.csv", Size: 0},
			wantStatus: http.StatusBadRequest,
			wantField:  "size",
		},
		{
			name:       "unknown kind",
			upload:     Upload{Kind: "billing", Filename: "a.csv", Size: 10},
			wantStatus: http.StatusBadRequest,
			wantField:  "kind",
		},
		{
			name:       "path traversal",
			upload:     Upload{Kind: "advising", Filename: "../../etc/a.csv", Size: 10},
			wantStatus: http.StatusBadRequest,
			wantField:  "filename",
		},
		{
			name:       "missing filename",
			upload:     Upload{Kind: "advising", Size: 10},
			wantStatus: http.StatusBadRequest,
			wantField:  "filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Upload(tt.upload)
			if tt.wantStatus == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)

			if tt.wantField != "" {
				details, ok := apiErr.Details.([]apierrors.ValidationError)
				require.True(t, ok)
				require.NotEmpty(t, details)
				assert.Equal(t, tt.wantField, details[0].Field)
			}
		})
	}
}

func TestValidator_UploadUnbounded(t *testing.T) {
	assert.NoError(t, New(0).Upload(Upload{Kind: "advising", Filename: "a.csv", Size: 1 << 40}))
}

func TestValidator_StructFilter(t *testing.T) {
	v := New(0)

	require.NoError(t, v.Struct(advising.Filter{Advisors: []string{"Ada"}}))

	err := v.Struct(advising.Filter{Types: []string{strings.Repeat("x", 201)}})
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	details := apiErr.Details.([]apierrors.ValidationError)
	require.Len(t, details, 1)
	assert.Equal(t, "types[0]", details[0].Field)
	assert.Contains(t, details[0].Message, "at most 200 characters")

	many := make([]string, 201)
	for i := range many {
		many[i] = "a"
	}
	err = v.Struct(advising.Filter{Advisors: many})
	require.True(t, errors.As(err, &apiErr))
	details = apiErr.Details.([]apierrors.ValidationError)
	assert.Equal(t, "advisors", details[0].Field)
	assert.Contains(t, details[0].Message, "at most 200 items")
}

package server

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-commerce/storefront/internal/validation"
)

func TestProfileUpdateFromForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantErr error
	}{
		{
			name: "only submitted fields",
			form: url.Values{"firstName": {"  Grace "}},
		},
		{
			name:    "password without current",
			form:    url.Values{"newPassword": {"secret1"}, "newPasswordConfirm": {"secret1"}},
			wantErr: ErrCurrentPasswordRequired,
		},
		{
			name:    "confirmation mismatch",
			form:    url.Values{"currentPassword": {"old-pass"}, "newPassword": {"secret1"}, "newPasswordConfirm": {"secret2"}},
			wantErr: ErrPasswordsMismatch,
		},
		{
			name:    "unchanged password",
			form:    url.Values{"currentPassword": {"secret1"}, "newPassword": {"secret1"}, "newPasswordConfirm": {"secret1"}},
			wantErr: ErrPasswordUnchanged,
		},
	}

	v := validation.NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ProfileUpdateFromForm(v, tt.form)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, input.FirstName)
			assert.Equal(t, "Grace", *input.FirstName)
			assert.Nil(t, input.LastName)
			assert.Nil(t, input.Email)
			assert.Nil(t, input.Password)
			require.NotNil(t, input.AcceptsMarketing)
			assert.False(t, *input.AcceptsMarketing)
		})
	}
}

func TestProfileUpdateFromFormPassword(t *testing.T) {
	input, err := ProfileUpdateFromForm(validation.NewValidator(), url.Values{
		"email":              {""},
		"phone":              {"+16135551111"},
		"acceptsMarketing":   {"on"},
		"currentPassword":    {"old-pass"},
		"newPassword":        {"new-pass"},
		"newPasswordConfirm": {"new-pass"},
	})
	require.NoError(t, err)

	assert.Nil(t, input.Email)
	require.NotNil(t, input.Phone)
	assert.Equal(t, "+16135551111", *input.Phone)
	assert.True(t, *input.AcceptsMarketing)
	require.NotNil(t, input.Password)
	assert.Equal(t, "new-pass", *input.Password)
}

func TestProfileUpdateFromFormRejectsInvalidValues(t *testing.T) {
	v := validation.NewValidator()

	_, err := ProfileUpdateFromForm(v, url.Values{"email": {"ada@"}})
	assert.Error(t, err)

	_, err = ProfileUpdateFromForm(v, url.Values{"phone": {"555"}})
	assert.Error(t, err)

	_, err = ProfileUpdateFromForm(v, url.Values{"currentPassword": {"old-pass"}, "newPassword": {"abc"}, "newPasswordConfirm": {"abc"}})
	assert.Error(t, err)
}

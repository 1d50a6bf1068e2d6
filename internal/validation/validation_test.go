package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wm-metals/trade-api/internal/domain"
	"go.uber.org/zap"
)

type stubRemote struct {
	called bool
	fields map[string]string
	err    error
}

func (s *stubRemote) Validate(_ context.Context, _ string, _ interface{}) (map[string]string, error) {
	s.called = true
	return s.fields, s.err
}

func TestValidate_MissingNameFailsWithoutRemoteCall(t *testing.T) {
	remote := &stubRemote{}
	v := New(remote, zap.NewNop())

	payload := &domain.CreateCustomerRequest{Email: "buyer@example.com"}
	result := v.Validate(context.Background(), "customer", payload)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "name")
	assert.False(t, remote.called, "remote validator must not run when structure fails")
}

func TestValidate_StructuralPassCallsRemote(t *testing.T) {
	remote := &stubRemote{}
	v := New(remote, zap.NewNop())

	payload := &domain.CreateCustomerRequest{Name: "Aceros del Norte"}
	result := v.Validate(context.Background(), "customer", payload)

	assert.True(t, result.Valid)
	assert.True(t, remote.called)
}

func TestValidate_RemoteRejectionWins(t *testing.T) {
	remote := &stubRemote{fields: map[string]string{"document": "Document already registered"}}
	v := New(remote, zap.NewNop())

	payload := &domain.CreateCustomerRequest{Name: "Aceros del Norte", Document: "123"}
	result := v.Validate(context.Background(), "customer", payload)

	assert.False(t, result.Valid)
	assert.Equal(t, "Document already registered", result.Errors["document"])
}

func TestValidate_RemoteFailureFallsBackToStructural(t *testing.T) {
	remote := &stubRemote{err: errors.New("connection refused")}
	v := New(remote, zap.NewNop())

	payload := &domain.CreateCustomerRequest{Name: "Aceros del Norte"}
	result := v.Validate(context.Background(), "customer", payload)

	assert.True(t, result.Valid, "remote outage must not reject a structurally valid payload")
}

func TestValidate_NilRemoteSkipsPhaseTwo(t *testing.T) {
	v := New(nil, zap.NewNop())

	payload := &domain.CreateCustomerRequest{Name: "Aceros del Norte"}
	result := v.Validate(context.Background(), "customer", payload)

	assert.True(t, result.Valid)
}

func TestValidate_InvalidEmailMessage(t *testing.T) {
	v := New(nil, zap.NewNop())

	payload := &domain.CreateCustomerRequest{Name: "Aceros del Norte", Email: "not-an-email"}
	result := v.Validate(context.Background(), "customer", payload)

	assert.False(t, result.Valid)
	assert.Equal(t, "Must be a valid email address", result.Errors["email"])
}

func TestSanitize_TrimsAndLowercasesEmail(t *testing.T) {
	payload := &domain.CreateCustomerRequest{
		Name:  "  Aceros del Norte  ",
		Email: " Buyer@Example.COM ",
		City:  "\tMonterrey ",
	}

	Sanitize(payload)

	assert.Equal(t, "Aceros del Norte", payload.Name)
	assert.Equal(t, "buyer@example.com", payload.Email)
	assert.Equal(t, "Monterrey", payload.City)
}

func TestSanitize_PointerFields(t *testing.T) {
	email := " Buyer@Example.COM "
	payload := &domain.UpdateCustomerRequest{Email: &email}

	Sanitize(payload)

	assert.Equal(t, "buyer@example.com", *payload.Email)
}

func TestSanitize_IgnoresNonStructValues(t *testing.T) {
	assert.NotPanics(t, func() {
		Sanitize(nil)
		s := "plain"
		Sanitize(&s)
		Sanitize(42)
	})
}

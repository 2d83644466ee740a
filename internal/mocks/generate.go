// Package mocks provides mock implementations for testing the session and
// admin-access boundary.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	backend := mocks.NewMockCredentialBackend(ctrl)
//	backend.EXPECT().Get(gomock.Any()).Return(cred, nil)
package mocks

// Generate mock for CredentialBackend interface from internal/ports.
// This creates MockCredentialBackend with Save, Get, Delete.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_backend_mock.go github.com/target/storefront-edge/internal/ports CredentialBackend

// Generate mock for AdminVerifier interface from internal/ports.
// This creates MockAdminVerifier with VerifyAdmin.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=admin_verifier_mock.go github.com/target/storefront-edge/internal/ports AdminVerifier

// Generate mock for TokenProvider interface from internal/ports.
// This creates MockTokenProvider with Begin, Exchange.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=token_provider_mock.go github.com/target/storefront-edge/internal/ports TokenProvider

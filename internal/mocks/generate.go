// Package mocks provides mock implementations for testing the session controller.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// controller's port interfaces. The mocks are generated using go:generate directives
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
//	transport := mocks.NewMockIdentityTransport(ctrl)
//	transport.EXPECT().WhoAmI(gomock.Any()).Return(identity, true, nil)
package mocks

// Generate mock for IdentityTransport interface from internal/ports.
// This creates MockIdentityTransport with methods for all IdentityTransport interface methods:
// Login, WhoAmI, Logout, ForgotPassword, ResetPassword
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_transport_mock.go github.com/workdesk/workdesk-go/internal/ports IdentityTransport

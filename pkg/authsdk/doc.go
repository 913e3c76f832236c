/*
Package authsdk is a Go client for the taskgate service.

# SDKClient vs Session

  - SDKClient: public endpoints (register, login, refresh, logout, health)
  - Session: authenticated endpoints, with automatic access token refresh

Typical use:

	client := authsdk.NewSDKClient("https://tasks.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})

	session, err := client.AuthenticateWithPassword(ctx, "alice@example.com", "correct horse battery")

	info, err := session.GetUserInfo(ctx)
	todo, err := session.CreateTodo(ctx, authsdk.CreateTodoRequest{Title: "buy milk"})

	// Revoke the refresh token when done.
	err = session.Logout(ctx)

# Token rotation

The server rotates refresh tokens by default: every refresh returns a new
refresh token and the old one stops working. Session keeps the latest pair,
so do not copy a Session's refresh token into a second Session.

# Errors

Non-2xx responses are returned as *APIError, carrying the status code, the
server's message and, for 400s, the per-field validation errors:

	_, err := client.Login(ctx, email, password)
	if authsdk.IsUnauthorized(err) {
		// bad credentials
	}

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.ValidationErrors != nil {
		// inspect apiErr.ValidationErrors["email"]
	}
*/
package authsdk

// Package pnpsdk is a small Go client for the PNP San Juan personnel API and
// the home of its request and response types.
//
// The API is cookie based. A Client keeps the session cookie in its jar, so a
// login followed by an OTP verification on the same Client ends up
// authenticated:
//
//	c, _ := pnpsdk.NewClient("http://localhost:8080")
//	state, err := c.Login(ctx, "alice", "secret")
//	if state.State == pnpsdk.StateOTPRequired {
//		state, err = c.VerifyOTP(ctx, codeFromEmail)
//	}
//
// Errors returned by the server come back as *APIError, which carries the
// HTTP status and the machine readable code.
package pnpsdk

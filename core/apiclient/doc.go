// Package apiclient is a JSON HTTP client for the authentication API.
//
// Every call reads the current token pair from a TokenSource and, when one is
// stored, sends it as "Authorization: Bearer <access token>". Tokens are never
// cached by the client, so a refresh committed to the store is visible to the
// very next request.
//
//	client := apiclient.New(store, apiclient.WithBaseURL("https://api.example.com/api/v1"))
//
//	var me User
//	if err := client.Get(ctx, "/users/me", &me); err != nil {
//		if apiclient.IsUnauthorized(err) {
//			// refresh and retry at a higher layer
//		}
//		return err
//	}
//
// Non-2xx responses and transport failures are returned as *Error. The
// message comes from the body's "detail" field (a string, or the first "msg"
// of a validation list), then "message", then the HTTP status text. Transport
// failures carry Status 0.
//
// The client never retries and never refreshes tokens.
package apiclient

// Package auth gates the UI behind a cookie session.
//
// Users are configured as username to bcrypt hash (see HashPassword).
// Logging in creates a session in a SessionStore and sets the session
// cookie. Middleware admits requests with a live session and puts the
// username in the request context (UserFromContext). Everything else is
// rejected: API requests with a JSON 401, page requests with a redirect to
// the login page that returns to the original path afterwards.
//
// In development mode every request is admitted as DevelopmentUser.
//
//	a, err := auth.New(&auth.Config{
//	    Users: auth.Users{"admin": hash},
//	})
//	mux.Handle("/login", a.LoginHandler())
//	mux.Handle("/logout", a.LogoutHandler())
//	http.ListenAndServe(":8080", a.Middleware(mux))
package auth

// Package google resolves credentials for the Google Calendar API.
//
// Credentials are tried in order: a service account key passed inline, a
// service account key file, and finally an installed-app OAuth client with a
// token previously saved by "calendar-mcp auth". The first that is present
// wins. When none is present, ErrNoCredentials is returned.
package google

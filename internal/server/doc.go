// Package server exposes the admission engine over HTTP with gin.
//
// Routes:
//
//	POST /v1/events/:eventID/sessions     enter the queue ({"token": "..."})
//	GET  /v1/events/:eventID              event statistics
//	GET  /v1/sessions/:sessionID          poll status and position
//	POST /v1/sessions/:sessionID/complete checkout succeeded
//	POST /v1/sessions/:sessionID/cancel   participant left
//	GET  /healthz                         liveness
//
// Unknown sessions answer 410 Gone with status "expired": a participant
// whose session was reaped and deleted sees the same thing as one whose
// session expired.
package server

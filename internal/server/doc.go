// Package server is the composition root of contact-inbox.
//
// New opens the message store, builds the admin gate and optional Matrix
// notifier from configuration, and registers the HTTP API:
//
//	POST   /api/contact                 public submission
//	POST   /api/admin/login             start an admin session (sets admin_session)
//	DELETE /api/admin/login             end the session
//	GET    /api/admin/messages          list, newest first, with unread count
//	PATCH  /api/admin/messages          mark {"id": n} read
//	DELETE /api/admin/messages?id=n     delete
//	GET    /api/admin/messages/unread   unread count
//	GET    /health, /health/ready       liveness, store readiness
//
// Admin routes sit behind auth.RequireSession. Error bodies are
// {"error": "..."} with fixed wording; storage details go to the log only.
//
// Run listens on server.http_addr, or joins a tailnet with tsnet when
// tailscale.enabled is set, and shuts down gracefully when its context ends.
package server

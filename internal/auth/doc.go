// Package auth provides account authentication for the marketplace API.
//
// Clients register or log in with email and password and receive an HS256
// JWT whose subject is the user ID. Every protected route expects the token
// in an "Authorization: Bearer <token>" header. Logging out revokes the
// token's ID until the token would have expired; revocations live in memory
// or, when REDIS_ADDR is set, in Redis so that several instances agree.
//
// Failed logins are counted per client IP and email. After
// AUTH_MAX_LOGIN_ATTEMPTS failures inside AUTH_RATE_LIMIT_WINDOW the pair is
// locked out for AUTH_LOCKOUT_DURATION and login answers 429.
//
// # Usage
//
//	tokens, _ := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, revoker)
//	svc := auth.NewService(usersRepo, tokens, limiter, auditService, cfg.Auth)
//	api.Use(auth.NewMiddleware(svc).RequireAuth())
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
package auth
